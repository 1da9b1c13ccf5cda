package log

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/klauspost/compress/zstd"

	"gridware.ai/internal/sim/warehouse"
)

// ReadTicks streams every tick entry from a compressed log, in order,
// stopping early when fn returns false.
func ReadTicks(path string, fn func(warehouse.TickLogEntry) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry warehouse.TickLogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return err
		}
		if !fn(entry) {
			return nil
		}
	}
	return sc.Err()
}
