package http

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/tallybook/tallybook/internal/service"
	"github.com/tallybook/tallybook/pkg/httpx"
	"github.com/tallybook/tallybook/pkg/slogx"
)

const expenseDateLayout = "2006-01-02"

// ExpensesHandler serves expense recording and the aggregate spend views.
//
// The read endpoints exist in two flavours wired by the router: the plain
// /api/expenses/... routes, which are always self-scoped, and the
// /api/expenses/admin/{userId}/... routes, where an admin names the target
// account. Both land on the same methods; the target resolution in
// PrincipalService.TargetUserID decides what the caller may see.
type ExpensesHandler struct {
	Expenses   *service.ExpenseService
	Principals *service.PrincipalService
}

// HandleCreate serves POST /api/expenses. Creation is always self-scoped,
// even for admins.
func (h *ExpensesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := resolvePrincipal(w, r, h.Principals)
	if !ok {
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		return
	}

	day, err := time.Parse(expenseDateLayout, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "date must be formatted YYYY-MM-DD")
		return
	}

	e, err := h.Expenses.CreateExpense(r.Context(),
		principal.ID, req.CategoryID, req.Title, req.Description, req.Amount, day)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, newExpenseResponse(e))
}

// HandleList serves GET /api/expenses and GET /api/expenses/admin/{userId}.
func (h *ExpensesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	target, ok := h.target(w, r)
	if !ok {
		return
	}

	list, err := h.Expenses.ListExpenses(r.Context(), target)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]expenseResponse, 0, len(list))
	for _, e := range list {
		out = append(out, newExpenseResponse(e))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleTotal serves the total-spend view.
func (h *ExpensesHandler) HandleTotal(w http.ResponseWriter, r *http.Request) {
	target, ok := h.target(w, r)
	if !ok {
		return
	}

	total, err := h.Expenses.Total(r.Context(), target)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, totalResponse{Total: total})
}

// HandleByCategory serves the per-category spend view.
func (h *ExpensesHandler) HandleByCategory(w http.ResponseWriter, r *http.Request) {
	target, ok := h.target(w, r)
	if !ok {
		return
	}

	page, size := pageParams(r)
	rows, err := h.Expenses.TotalsByCategory(r.Context(), target, page, size)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rows)
}

// HandleMonthly serves the per-month spend view.
func (h *ExpensesHandler) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	target, ok := h.target(w, r)
	if !ok {
		return
	}

	page, size := pageParams(r)
	rows, err := h.Expenses.MonthlyTotals(r.Context(), target, page, size)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rows)
}

// HandleAnnual serves the per-year spend view.
func (h *ExpensesHandler) HandleAnnual(w http.ResponseWriter, r *http.Request) {
	target, ok := h.target(w, r)
	if !ok {
		return
	}

	page, size := pageParams(r)
	rows, err := h.Expenses.AnnualTotals(r.Context(), target, page, size)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rows)
}

// HandleAnnualExport streams the full annual view as a CSV download.
func (h *ExpensesHandler) HandleAnnualExport(w http.ResponseWriter, r *http.Request) {
	target, ok := h.target(w, r)
	if !ok {
		return
	}

	rows, err := h.Expenses.AllAnnualTotals(r.Context(), target)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="annual-expenses.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"year", "total"})
	for _, row := range rows {
		_ = cw.Write([]string{row.Year, strconv.FormatFloat(row.Total, 'f', 2, 64)})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		// Headers are gone already; all we can do is log.
		slogx.FromContext(r.Context()).Error("csv export failed", "err", err)
	}
}

// target resolves whose data this request reads: the {userId} path value on
// the admin routes, or the caller themselves when it is absent.
func (h *ExpensesHandler) target(w http.ResponseWriter, r *http.Request) (string, bool) {
	principal, ok := resolvePrincipal(w, r, h.Principals)
	if !ok {
		return "", false
	}

	target, err := h.Principals.TargetUserID(principal, r.PathValue("userId"))
	if err != nil {
		writeServiceError(w, r, err)
		return "", false
	}
	return target, true
}

func pageParams(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	size, _ = strconv.Atoi(r.URL.Query().Get("size"))
	return page, size
}
