package log

// Attribute keys shared by every component.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserAgent     = "user_agent"
	FieldReferer       = "referer"
	FieldError         = "error"
	FieldErrorType     = "error_type"
	FieldOperation     = "operation"
	FieldUserID        = "user_id"
	FieldTransactionID = "transaction_id"
	FieldTxType        = "transaction_type"
	FieldAmount        = "amount"
	FieldCategory      = "category"
	FieldRange         = "range"
	FieldSelector      = "selector"
	FieldOffset        = "offset"
	FieldCount         = "count"
	FieldObject        = "object"
	FieldEventKind     = "event_kind"
)

const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentTransaction = "transaction"
	ComponentDashboard   = "dashboard"
	ComponentProfile     = "profile"
	ComponentAuth        = "auth"
	ComponentSupabase    = "supabase"
	ComponentAMQP        = "amqp"
	ComponentWorker      = "worker"
	ComponentSheets      = "sheets"
	ComponentCache       = "cache"
	ComponentSecurity    = "security"
	ComponentBackend     = "backend"
	ComponentTemplate    = "template"
	ComponentSeed        = "seed"
)

const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpList    = "list"
	OpUpload  = "upload"
	OpSignIn  = "sign_in"
	OpSignUp  = "sign_up"
	OpSignOut = "sign_out"
	OpRefresh = "refresh"
	OpRender  = "render"
)

const (
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeAuth          = "auth_error"
)

// Attrs collects key/value pairs in insertion order for slog calls. Empty
// optional values are skipped.
type Attrs []any

func NewFields() Attrs {
	return make(Attrs, 0, 8)
}

func (a Attrs) add(key string, value any) Attrs {
	return append(a, key, value)
}

func (a Attrs) addString(key, value string) Attrs {
	if value == "" {
		return a
	}
	return a.add(key, value)
}

func (a Attrs) WithOperation(op string) Attrs { return a.add(FieldOperation, op) }

func (a Attrs) WithUser(userID string) Attrs { return a.addString(FieldUserID, userID) }

func (a Attrs) WithError(err error) Attrs {
	if err == nil {
		return a
	}
	return a.add(FieldError, err.Error())
}

// WithTransaction records a transaction. The amount stays a decimal string so
// JSON output keeps its precision.
func (a Attrs) WithTransaction(id, txType, category, amount string) Attrs {
	return a.addString(FieldTransactionID, id).
		add(FieldTxType, txType).
		add(FieldAmount, amount).
		addString(FieldCategory, category)
}

// Args returns the pairs for a slog call.
func (a Attrs) Args() []any {
	return []any(a)
}

// Get returns the value stored under key.
func (a Attrs) Get(key string) (any, bool) {
	for i := 0; i+1 < len(a); i += 2 {
		if a[i] == key {
			return a[i+1], true
		}
	}
	return nil, false
}
