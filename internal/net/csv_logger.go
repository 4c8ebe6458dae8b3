package net

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// CSVLogger writes one row per training iteration to a CSV file with the
// columns iteration, loss and time_seconds.
type CSVLogger struct {
	BaseCallback
	Filename string
	Append   bool

	file   *os.File
	writer *csv.Writer
	start  time.Time
	err    error
}

// NewCSVLogger creates a new CSVLogger.
func NewCSVLogger(filename string, append bool) *CSVLogger {
	return &CSVLogger{
		Filename: filename,
		Append:   append,
	}
}

// Err returns the first error met while opening or writing the file.
func (c *CSVLogger) Err() error {
	return c.err
}

func (c *CSVLogger) OnTrainBegin(n *Network) {
	mode := os.O_CREATE | os.O_WRONLY
	if c.Append {
		mode |= os.O_APPEND
	} else {
		mode |= os.O_TRUNC
	}

	file, err := os.OpenFile(c.Filename, mode, 0644)
	if err != nil {
		c.fail(fmt.Errorf("csv logger: open %s: %w", c.Filename, err))
		return
	}
	c.file = file
	c.writer = csv.NewWriter(file)
	c.start = time.Now()

	// Header only for a fresh file.
	info, err := file.Stat()
	if err == nil && (info.Size() == 0 || !c.Append) {
		c.write([]string{"iteration", "loss", "time_seconds"})
	}
}

func (c *CSVLogger) OnIterationEnd(iteration int, loss float64, n *Network) {
	if c.writer == nil {
		return
	}

	c.write([]string{
		strconv.Itoa(iteration),
		strconv.FormatFloat(loss, 'g', -1, 64),
		strconv.FormatFloat(time.Since(c.start).Seconds(), 'f', 3, 64),
	})
}

func (c *CSVLogger) OnTrainEnd(n *Network) {
	if c.file == nil {
		return
	}
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		c.fail(fmt.Errorf("csv logger: flush: %w", err))
	}
	if err := c.file.Close(); err != nil {
		c.fail(fmt.Errorf("csv logger: close: %w", err))
	}
	c.file = nil
	c.writer = nil
}

func (c *CSVLogger) write(record []string) {
	if err := c.writer.Write(record); err != nil {
		c.fail(fmt.Errorf("csv logger: write: %w", err))
		return
	}
	c.writer.Flush()
}

func (c *CSVLogger) fail(err error) {
	if c.err == nil {
		c.err = err
		log.Printf("%v", err)
	}
}
