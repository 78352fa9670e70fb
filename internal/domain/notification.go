package domain

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ParseSeverity maps a server flash category onto a Severity. The server
// flashes failures as "danger".
func ParseSeverity(category string) Severity {
	switch category {
	case "success":
		return SeveritySuccess
	case "danger", "error":
		return SeverityError
	case "warning":
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

type NotificationMessage struct {
	Severity Severity
	Text     string
}
