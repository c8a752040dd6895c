package logging

// Standardized attribute keys shared across components. Using these
// constants keeps log output greppable and lets the console handler
// lift the common fields into the line header.
const (
	FieldComponent = "component"
	FieldJobKey    = "job_key"
	FieldSite      = "site"
	FieldKind      = "kind"
	FieldRequestID = "request_id"
	FieldEventType = "event_type"
)
