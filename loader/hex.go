package loader

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadHex reads a text file of machine-code words, one per line, and
// assembles them into a little-endian byte image. Eight hex digits
// produce a 32-bit word, four digits a 16-bit compressed halfword.
// Blank lines and '#' comments are skipped.
func LoadHex(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hex file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var image []byte
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
		if text == "" {
			continue
		}
		text = strings.TrimPrefix(text, "0x")

		value, err := strconv.ParseUint(text, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		switch len(text) {
		case 8:
			image = binary.LittleEndian.AppendUint32(image, uint32(value))
		case 4:
			image = binary.LittleEndian.AppendUint16(image, uint16(value))
		default:
			return nil, fmt.Errorf("line %d: expected 4 or 8 hex digits, got %q", line, text)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return image, nil
}
