package gpio

import "fmt"

// lineNamer is the part of a GPIO chip needed to find a line by name.
type lineNamer interface {
	Lines() int
	LineName(offset int) (string, error)
	Close() error
}

// findNamedLine scans chips in order and returns the chip and offset of the
// first line called name. Chips that cannot be opened are skipped, and every
// opened chip is closed before returning.
func findNamedLine(chips []string, open func(chip string) (lineNamer, error), name string) (string, int, error) {
	for _, chip := range chips {
		c, err := open(chip)
		if err != nil {
			continue
		}
		offset, found := scanLines(c, name)
		c.Close()
		if found {
			return chip, offset, nil
		}
	}
	return "", 0, fmt.Errorf("no line named %q", name)
}

func scanLines(c lineNamer, name string) (int, bool) {
	for i := 0; i < c.Lines(); i++ {
		n, err := c.LineName(i)
		if err == nil && n == name {
			return i, true
		}
	}
	return 0, false
}
