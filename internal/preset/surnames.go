package preset

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/cgeisenberger/lisanon/presets"
)

// Surnames returns the effective surname dictionary for the dictionary
// pass: the configured list file (or the embedded German default), with
// comment and blank lines skipped, plus any per-invocation extra surnames.
func (p *Preset) Surnames() ([]string, error) {
	data := presets.SurnamesDE()
	if p.Redaction.SurnameList != "" {
		var err error
		data, err = os.ReadFile(p.Redaction.SurnameList)
		if err != nil {
			return nil, fmt.Errorf("reading surname list %s: %w", p.Redaction.SurnameList, err)
		}
	}
	names := parseSurnames(data)
	names = append(names, p.Redaction.ExtraSurnames...)
	return names, nil
}

func parseSurnames(data []byte) []string {
	var names []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names
}
