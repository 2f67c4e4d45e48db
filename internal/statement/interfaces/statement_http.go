package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"ledger-cloud/internal/audit"
	"ledger-cloud/internal/observability/metrics"
	statementapp "ledger-cloud/internal/statement/application"
	statement "ledger-cloud/internal/statement/domain"
	"ledger-cloud/internal/tenant"
)

// StatementReader produces customer statements.
type StatementReader interface {
	GetStatement(ctx context.Context, q statementapp.StatementQuery) (*statement.Statement, error)
}

// StatementHandler serves customer statements as JSON, XLSX and CSV.
type StatementHandler struct {
	service         StatementReader
	auditLogger     audit.Logger
	logger          *zap.Logger
	defaultTenantID int64
	sheetName       string
	queryTimeout    time.Duration
}

// HandlerOption configures the handler.
type HandlerOption func(*StatementHandler)

// WithDefaultTenant is used when the request carries no tenant.
func WithDefaultTenant(tenantID int64) HandlerOption {
	return func(h *StatementHandler) {
		h.defaultTenantID = tenantID
	}
}

// WithSheetName sets the summary sheet name of XLSX exports.
func WithSheetName(name string) HandlerOption {
	return func(h *StatementHandler) {
		if name != "" {
			h.sheetName = name
		}
	}
}

// WithQueryTimeout bounds each statement computation.
func WithQueryTimeout(timeout time.Duration) HandlerOption {
	return func(h *StatementHandler) {
		h.queryTimeout = timeout
	}
}

// WithLogger sets the handler logger.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *StatementHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewStatementHandler constructs a handler. auditLogger may be nil.
func NewStatementHandler(service StatementReader, auditLogger audit.Logger, opts ...HandlerOption) (*StatementHandler, error) {
	if service == nil {
		return nil, errors.New("statement handler: nil service")
	}
	h := &StatementHandler{
		service:     service,
		auditLogger: auditLogger,
		logger:      zap.NewNop(),
		sheetName:   "statement",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Routes mounts the statement endpoints.
func (h *StatementHandler) Routes(r chi.Router) {
	r.Route("/api/v1/customers/{customerID}", func(cr chi.Router) {
		cr.Get("/statement", h.handleGet)
		cr.Get("/statement.xlsx", h.handleExportXLSX)
		cr.Get("/statement.csv", h.handleExportCSV)
	})
}

type statementRequest struct {
	query statementapp.StatementQuery
}

func (h *StatementHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	stmt, err := h.load(r.Context(), req.query)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(newStatementResponse(stmt))
	h.logAudit(r, req.query, "statement.view", map[string]any{
		"from":         statement.FormatDate(stmt.FromDate),
		"to":           statement.FormatDate(stmt.ToDate),
		"include_zero": stmt.IncludeZeroBalanceTransactions,
		"transactions": len(stmt.Transactions),
	})
}

func (h *StatementHandler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveStatementExport("xlsx", result, time.Since(start))
	}()

	req, err := h.parseRequest(r)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	stmt, err := h.load(r.Context(), req.query)
	if err != nil {
		result = exportResult(err)
		h.respondServiceError(w, r, err)
		return
	}
	data, err := BuildStatementXLSX(stmt, h.sheetName)
	if err != nil {
		result = metrics.ResultError
		h.logger.Error("export xlsx failed", zap.Int64("customer_id", req.query.CustomerID), zap.Error(err))
		http.Error(w, "export xlsx error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", attachmentName(stmt, "xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, req.query, "statement.export", map[string]any{"format": "xlsx"})
}

func (h *StatementHandler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveStatementExport("csv", result, time.Since(start))
	}()

	req, err := h.parseRequest(r)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	stmt, err := h.load(r.Context(), req.query)
	if err != nil {
		result = exportResult(err)
		h.respondServiceError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := WriteStatementCSV(&buf, stmt); err != nil {
		result = metrics.ResultError
		h.logger.Error("export csv failed", zap.Int64("customer_id", req.query.CustomerID), zap.Error(err))
		http.Error(w, "export csv error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachmentName(stmt, "csv"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
	h.logAudit(r, req.query, "statement.export", map[string]any{"format": "csv"})
}

func (h *StatementHandler) load(ctx context.Context, q statementapp.StatementQuery) (*statement.Statement, error) {
	if h.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.queryTimeout)
		defer cancel()
	}
	return h.service.GetStatement(ctx, q)
}

func (h *StatementHandler) parseRequest(r *http.Request) (statementRequest, error) {
	customerID, err := strconv.ParseInt(chi.URLParam(r, "customerID"), 10, 64)
	if err != nil || customerID <= 0 {
		return statementRequest{}, statement.ErrInvalidCustomerID
	}
	tenantID, ok := tenant.FromContext(r.Context())
	if !ok {
		tenantID = h.defaultTenantID
	}
	if tenantID <= 0 {
		return statementRequest{}, statement.ErrInvalidTenantID
	}

	values := r.URL.Query()
	from, err := parseDateParam(values.Get("from"), "from")
	if err != nil {
		return statementRequest{}, err
	}
	to, err := parseDateParam(values.Get("to"), "to")
	if err != nil {
		return statementRequest{}, err
	}
	if from.After(to) {
		return statementRequest{}, errors.New("from must not be after to")
	}
	q := statementapp.DefaultQuery(customerID, tenantID, from, to)
	if raw := values.Get("include_zero"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return statementRequest{}, errors.New("include_zero must be true or false")
		}
		q.IncludeZeroBalanceTransactions = include
	}
	return statementRequest{query: q}, nil
}

func parseDateParam(value, name string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	parsed, err := statement.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD", name)
	}
	return parsed, nil
}

func (h *StatementHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, statement.ErrCustomerNotFound):
		http.Error(w, "customer not found", http.StatusNotFound)
	case errors.Is(err, statement.ErrInvalidCustomerID), errors.Is(err, statement.ErrInvalidTenantID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("statement failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		http.Error(w, "statement error", http.StatusInternalServerError)
	}
}

func exportResult(err error) string {
	if errors.Is(err, statement.ErrCustomerNotFound) {
		return metrics.ResultNotFound
	}
	return metrics.ResultError
}

func attachmentName(stmt *statement.Statement, ext string) string {
	return fmt.Sprintf(`attachment; filename="statement-%d-%s-%s.%s"`,
		stmt.Customer.ID, statement.FormatDate(stmt.FromDate), statement.FormatDate(stmt.ToDate), ext)
}

func (h *StatementHandler) logAudit(r *http.Request, q statementapp.StatementQuery, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	if err := h.auditLogger.Log(r.Context(), audit.Entry{
		TenantID:     q.TenantID,
		Action:       action,
		ResourceType: "customer_statement",
		ResourceID:   strconv.FormatInt(q.CustomerID, 10),
		CustomerID:   q.CustomerID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
		RequestID:    middleware.GetReqID(r.Context()),
	}); err != nil {
		h.logger.Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}
