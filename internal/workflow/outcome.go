package workflow

// Level grades an Outcome for display.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Outcome is the user-facing result of an operation that did not fail. Code
// is a message key resolved by the localizer.
type Outcome struct {
	Level Level  `json:"level"`
	Code  string `json:"code"`
}

func Success(code string) Outcome { return Outcome{Level: LevelSuccess, Code: code} }

func Info(code string) Outcome { return Outcome{Level: LevelInfo, Code: code} }

func Warning(code string) Outcome { return Outcome{Level: LevelWarning, Code: code} }
