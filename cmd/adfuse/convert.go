package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dargueta/adfuse/logging"
)

type converter func(input io.Reader, output io.Writer) (int64, error)

func convertFile(sourceFilePath, outputFilePath string, convert converter) error {
	sourceFile, err := os.Open(sourceFilePath)
	if err != nil {
		return fmt.Errorf("failed to open file for reading: `%v`: %w", sourceFilePath, err)
	}
	defer sourceFile.Close()

	outFile, err := os.Create(outputFilePath)
	if err != nil {
		return fmt.Errorf("failed to open file for writing: `%v`: %w", outputFilePath, err)
	}

	nWritten, err := convert(sourceFile, outFile)
	closeErr := outFile.Close()
	if err != nil {
		return fmt.Errorf("error converting file: %w", err)
	}
	if closeErr != nil {
		return closeErr
	}

	logging.Info(
		"wrote image",
		logging.String("path", outputFilePath),
		logging.Int64("bytes", nWritten),
	)
	return nil
}
