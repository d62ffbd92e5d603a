package writer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// New prepares a trace for filename. Nothing is created at filename itself
// until Close succeeds. A filename of "-" publishes to standard output.
func New(filename string) (*Writer, error) {
	dir := os.TempDir()
	if filename != STDOUT {
		dir = filepath.Dir(filename)
	}

	body, err := os.CreateTemp(dir, ".flows-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("creating trace body: %w", err)
	}

	csvWriter := csv.NewWriter(body)
	csvWriter.Comma = ' '

	return &Writer{
		filename:  filename,
		body:      body,
		csvWriter: csvWriter,
		stdout:    os.Stdout,
	}, nil
}

func (w *Writer) Write(register *WriterRegister) error {
	if w.closed {
		return fmt.Errorf("write on closed trace %s", w.filename)
	}

	err := w.csvWriter.Write([]string{
		strconv.FormatUint(uint64(register.Source), 10),
		strconv.FormatUint(uint64(register.Destination), 10),
		strconv.Itoa(PRIORITY_GROUP),
		strconv.FormatUint(uint64(register.Port), 10),
		strconv.FormatUint(register.Size, 10),
		strconv.FormatFloat(register.StartTime, 'f', TIME_DECIMALS, 64),
	})
	if err != nil {
		return err
	}

	w.count++

	return nil
}

func (w *Writer) Count() uint64 {
	return w.count
}

func (w *Writer) Filename() string {
	return w.filename
}

// Close writes the count header followed by the staged body to the
// destination. The destination is replaced atomically when it is a file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	defer os.Remove(w.body.Name())
	defer w.body.Close()

	w.csvWriter.Flush()
	if err := w.csvWriter.Error(); err != nil {
		return fmt.Errorf("flushing trace body: %w", err)
	}

	if _, err := w.body.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding trace body: %w", err)
	}

	if w.filename == STDOUT {
		return w.publish(w.stdout)
	}

	final, err := os.CreateTemp(filepath.Dir(w.filename), ".trace-*.tmp")
	if err != nil {
		return fmt.Errorf("creating trace: %w", err)
	}

	if err := w.publish(final); err != nil {
		final.Close()
		os.Remove(final.Name())
		return err
	}

	if err := final.Chmod(0644); err != nil {
		final.Close()
		os.Remove(final.Name())
		return fmt.Errorf("setting trace permissions: %w", err)
	}

	if err := final.Close(); err != nil {
		os.Remove(final.Name())
		return fmt.Errorf("closing trace: %w", err)
	}

	if err := os.Rename(final.Name(), w.filename); err != nil {
		os.Remove(final.Name())
		return fmt.Errorf("publishing trace: %w", err)
	}

	return nil
}

func (w *Writer) publish(out io.Writer) error {
	buffered := bufio.NewWriter(out)

	if _, err := fmt.Fprintf(buffered, "%d\n", w.count); err != nil {
		return fmt.Errorf("writing trace header: %w", err)
	}

	if _, err := io.Copy(buffered, w.body); err != nil {
		return fmt.Errorf("copying trace body: %w", err)
	}

	if err := buffered.Flush(); err != nil {
		return fmt.Errorf("writing trace: %w", err)
	}

	return nil
}

// Abort discards everything written so far.
func (w *Writer) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true

	w.body.Close()

	return os.Remove(w.body.Name())
}

// Read parses a complete trace and checks that the header count matches the
// number of flow lines.
func Read(r io.Reader) ([]*WriterRegister, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: missing count header", ErrMalformedTrace)
	}

	count, err := strconv.ParseUint(strings.TrimSpace(scanner.Text()), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad count header %q", ErrMalformedTrace, scanner.Text())
	}

	// the header is untrusted until the body has been counted
	registers := make([]*WriterRegister, 0, min(count, MAX_PREALLOCATED_FLOWS))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		register, err := parseRegister(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedTrace, len(registers)+2, err)
		}

		registers = append(registers, register)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if uint64(len(registers)) != count {
		return nil, fmt.Errorf("%w: header announces %d flows, found %d", ErrMalformedTrace, count, len(registers))
	}

	return registers, nil
}

func parseRegister(line string) (*WriterRegister, error) {
	fields := strings.Fields(line)
	if len(fields) != 6 {
		return nil, fmt.Errorf("expected 6 columns, got %d", len(fields))
	}

	source, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return nil, err
	}

	destination, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return nil, err
	}

	if fields[2] != strconv.Itoa(PRIORITY_GROUP) {
		return nil, fmt.Errorf("unexpected priority group %q", fields[2])
	}

	port, err := strconv.ParseUint(fields[3], 10, 16)
	if err != nil {
		return nil, err
	}

	size, err := strconv.ParseUint(fields[4], 10, 64)
	if err != nil {
		return nil, err
	}

	startTime, err := strconv.ParseFloat(fields[5], 64)
	if err != nil {
		return nil, err
	}

	return &WriterRegister{
		Source:      uint32(source),
		Destination: uint32(destination),
		Port:        uint16(port),
		Size:        size,
		StartTime:   startTime,
	}, nil
}

func WriteManifest(filename string, manifest *Manifest) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

func ReadManifest(filename string) (*Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	return &manifest, nil
}

// Check verifies that no flow loops back to its source and that start times
// never go backwards.
func Check(registers []*WriterRegister) (*TraceStats, error) {
	stats := &TraceStats{}
	hosts := map[uint32]struct{}{}

	for i, register := range registers {
		if register.Source == register.Destination {
			return nil, fmt.Errorf("%w: flow %d loops on host %d", ErrMalformedTrace, i, register.Source)
		}

		if i > 0 && register.StartTime < registers[i-1].StartTime {
			return nil, fmt.Errorf("%w: flow %d starts at %.9f, before flow %d at %.9f",
				ErrMalformedTrace, i, register.StartTime, i-1, registers[i-1].StartTime)
		}

		if i == 0 {
			stats.FirstStart = register.StartTime
		}

		stats.Flows++
		stats.TotalBytes += register.Size
		stats.LastStart = register.StartTime

		hosts[register.Source] = struct{}{}
		hosts[register.Destination] = struct{}{}
	}

	stats.Hosts = len(hosts)

	return stats, nil
}
