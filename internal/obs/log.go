// Package obs holds the registry's observability plumbing: a shared JSON
// line logger and the prometheus metric set.
package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
)

var (
	once sync.Once
	std  *log.Logger
)

// Logger returns the registry's shared line logger. One JSON object per
// line, no prefix, so collectors can ingest the stream without a parse
// step.
func Logger() *log.Logger {
	once.Do(func() {
		std = log.New(os.Stdout, "", 0)
	})
	return std
}

// Emit writes one structured JSON line. Carries access-log entries and
// service events such as issued password-reset tokens.
func Emit(entry map[string]any) {
	data, err := json.Marshal(entry)
	if err != nil {
		Logger().Println(`{"level":"error","msg":"log entry not serializable"}`)
		return
	}
	Logger().Println(string(data))
}
