package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"frontoffice/internal/domain"
)

func (a *API) handleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.QuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.service.Quote(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	stats, err := a.service.Dashboard(r.Context(), r.URL.Query().Get("branch_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) handleRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	query := r.URL.Query()
	floor := 0
	if raw := strings.TrimSpace(query.Get("floor")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, errors.New("floor must be a non-negative integer"))
			return
		}
		floor = parsed
	}

	rooms, err := a.service.ListRooms(r.Context(), query.Get("branch_id"), query.Get("status"), floor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

// handleRoomActions serves PATCH /api/v1/rooms/{number}/status.
func (a *API) handleRoomActions(w http.ResponseWriter, r *http.Request) {
	parts := pathTail(r.URL.Path, "/api/v1/rooms/")
	if len(parts) != 2 || parts[1] != "status" {
		writeError(w, http.StatusNotFound, errors.New("unknown room action"))
		return
	}
	if r.Method != http.MethodPatch {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.RoomStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	room, err := a.service.UpdateRoomStatus(r.Context(), r.URL.Query().Get("branch_id"), parts[0], req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"room": room})
}

func (a *API) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.CheckInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.service.CheckIn(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (a *API) handleStaySearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	query := r.URL.Query()
	resp, err := a.service.SearchStays(r.Context(), query.Get("branch_id"), domain.StaySearch{
		By:    query.Get("by"),
		Query: query.Get("q"),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStayActions routes everything under /api/v1/stays/{id}.
func (a *API) handleStayActions(w http.ResponseWriter, r *http.Request) {
	parts := pathTail(r.URL.Path, "/api/v1/stays/")
	if len(parts) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("stay id required"))
		return
	}
	stayID := parts[0]

	switch {
	case len(parts) == 1:
		a.handleFolio(w, r, stayID)
	case len(parts) == 2 && parts[1] == "charges":
		a.handleAddCharge(w, r, stayID)
	case len(parts) == 3 && parts[1] == "charges":
		a.handleRemoveCharge(w, r, stayID, parts[2])
	case len(parts) == 2 && parts[1] == "extra-nights":
		a.handleExtraNights(w, r, stayID)
	case len(parts) == 2 && parts[1] == "payments":
		a.handleCollectPayment(w, r, stayID)
	case len(parts) == 2 && parts[1] == "invoice":
		a.handleInvoice(w, r, stayID)
	case len(parts) == 2 && parts[1] == "checkout":
		a.handleCompleteCheckout(w, r, stayID)
	default:
		writeError(w, http.StatusNotFound, errors.New("unknown stay action"))
	}
}

func (a *API) handleFolio(w http.ResponseWriter, r *http.Request, stayID string) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	resp, err := a.service.GetFolio(r.Context(), stayID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleAddCharge(w http.ResponseWriter, r *http.Request, stayID string) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.ManualChargeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.service.AddManualCharge(r.Context(), stayID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleRemoveCharge(w http.ResponseWriter, r *http.Request, stayID string, chargeID string) {
	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w)
		return
	}

	version, err := parseVersion(r.URL.Query().Get("expected_version"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp, err := a.service.RemoveCharge(r.Context(), stayID, chargeID, version)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleExtraNights(w http.ResponseWriter, r *http.Request, stayID string) {
	if r.Method != http.MethodPut {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.ExtraNightsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.service.SetExtraNights(r.Context(), stayID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleCollectPayment(w http.ResponseWriter, r *http.Request, stayID string) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.CollectPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.service.CollectPayment(r.Context(), stayID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleInvoice returns JSON by default and the bare printable page with
// format=html.
func (a *API) handleInvoice(w http.ResponseWriter, r *http.Request, stayID string) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	invoice, err := a.service.PrintInvoice(r.Context(), stayID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("format")), "html") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(invoice.HTML))
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

func (a *API) handleCompleteCheckout(w http.ResponseWriter, r *http.Request, stayID string) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.CompleteCheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.service.CompleteCheckout(r.Context(), stayID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleOutstanding(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	balances, err := a.service.OutstandingBalances(r.Context(), r.URL.Query().Get("branch_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"balances": balances})
}

func (a *API) handleGuests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	query := r.URL.Query()
	guests, err := a.service.GuestHistory(r.Context(), query.Get("branch_id"), query.Get("q"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"guests": guests})
}

func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	query := r.URL.Query()
	records, err := a.service.SearchRecords(r.Context(), query.Get("branch_id"), domain.StayRecordSearch{
		Query:  query.Get("q"),
		Status: query.Get("status"),
		From:   query.Get("from"),
		To:     query.Get("to"),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": records})
}

func (a *API) handleLiveRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	board, err := a.service.LiveRooms(r.Context(), r.URL.Query().Get("branch_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (a *API) handleCompanies(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		companies, err := a.service.ListCompanies(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"companies": companies})
	case http.MethodPost:
		var req domain.CompanyCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		company, err := a.service.CreateCompany(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"company": company})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleCompanyBills(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		query := r.URL.Query()
		resp, err := a.service.ListCompanyBills(r.Context(), query.Get("branch_id"), query.Get("company_id"), query.Get("status"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	case http.MethodPost:
		var req domain.CompanyBillRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		bill, err := a.service.GenerateCompanyBill(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"bill": bill})
	default:
		writeMethodNotAllowed(w)
	}
}

// handleCompanyBillActions serves POST /api/v1/company-bills/{id}/pay.
func (a *API) handleCompanyBillActions(w http.ResponseWriter, r *http.Request) {
	parts := pathTail(r.URL.Path, "/api/v1/company-bills/")
	if len(parts) != 2 || parts[1] != "pay" {
		writeError(w, http.StatusNotFound, errors.New("unknown company bill action"))
		return
	}
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	bill, err := a.service.MarkCompanyBillPaid(r.Context(), parts[0])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bill": bill})
}

func (a *API) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	query := r.URL.Query()
	limit := parsePositiveLimit(query.Get("limit"), 100, 500)
	logs, err := a.service.ListAuditLogs(r.Context(), query.Get("branch_id"), query.Get("date"), query.Get("action"), query.Get("actor"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}
