package journal

import "time"

type MoveType string

const (
	MoveAdd      MoveType = "add"
	MoveSubtract MoveType = "subtract"
)

type Source string

const (
	SourceBot    Source = "bot"
	SourceCLI    Source = "cli"
	SourceImport Source = "import"
)

// Entry: операция с остатком, отправленная оператором в бэкенд.
// Error пустой, если бэкенд операцию принял.
type Entry struct {
	ID        int64
	CreatedAt time.Time
	ChatID    int64
	SupplyID  int64
	ColorID   int64
	Qty       float64
	Type      MoveType
	Note      string
	Source    Source
	Error     string
}

func (e Entry) OK() bool { return e.Error == "" }
