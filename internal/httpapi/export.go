package httpapi

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"frontoffice/internal/domain"
	"frontoffice/internal/navigation"
	"frontoffice/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (a *API) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	query := r.URL.Query()
	format := strings.ToLower(strings.TrimSpace(query.Get("format")))
	if format == "csv" || format == "xlsx" {
		actor, _ := service.ActorFromContext(r.Context())
		if !navigation.CanAccess(actor.Role, navigation.SectionExport) {
			writeError(w, http.StatusForbidden, fmt.Errorf("export not available for role %s", actor.Role))
			return
		}
	}

	report, err := a.service.DailyReport(r.Context(), query.Get("branch_id"), query.Get("date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("daily-report-%s-%s", report.BranchID, report.Date)
	switch format {
	case "csv":
		body, err := dailyReportToCSV(report)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".csv"))
		_, _ = w.Write(body)
	case "xlsx":
		body, err := dailyReportToXLSX(report)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".xlsx"))
		_, _ = w.Write(body)
	case "html", "pdf":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(dailyReportToPrintableHTML(report)))
	default:
		writeJSON(w, http.StatusOK, report)
	}
}

// dailyReportRows flattens a report into section/key/value rows shared by the
// CSV and XLSX exports.
func dailyReportRows(report domain.DailyReport) [][]string {
	rows := [][]string{
		{"section", "key", "value"},
		{"summary", "date", report.Date},
		{"summary", "branch_id", report.BranchID},
		{"summary", "check_ins", strconv.FormatInt(report.CheckIns, 10)},
		{"summary", "check_outs", strconv.FormatInt(report.CheckOuts, 10)},
		{"summary", "room_revenue", report.RoomRevenue.StringFixed(2)},
		{"summary", "gst_collected", report.GSTCollected.StringFixed(2)},
		{"summary", "total_billed", report.TotalBilled.StringFixed(2)},
		{"summary", "payments_total", report.PaymentsTotal.StringFixed(2)},
		{"summary", "occupancy_rate", strconv.FormatFloat(report.OccupancyRate, 'f', 2, 64)},
		{"summary", "rooms_occupied", strconv.Itoa(report.RoomsOccupied)},
		{"summary", "rooms_available", strconv.Itoa(report.RoomsAvailable)},
	}
	for _, payment := range report.ByPayment {
		rows = append(rows,
			[]string{"payment", payment.Method + "_payments", strconv.FormatInt(payment.Payments, 10)},
			[]string{"payment", payment.Method + "_amount", payment.Amount.StringFixed(2)},
		)
	}
	return rows
}

func dailyReportToCSV(report domain.DailyReport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(dailyReportRows(report)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func dailyReportToXLSX(report domain.DailyReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Daily Report"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	for i, row := range dailyReportRows(report) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, value := range row {
			values[j] = value
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var dailyReportHTMLTmpl = template.Must(template.New("daily-report").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Daily Report {{.Date}}</title>
  <style>
    body { font-family: sans-serif; margin: 24px; }
    table { width: 100%; border-collapse: collapse; margin-top: 8px; }
    th, td { border: 1px solid #ddd; padding: 6px; font-size: 13px; }
    h2, h3 { margin-bottom: 4px; }
  </style>
</head>
<body>
  <h2>Daily Report {{.Date}}</h2>
  <p>Branch: {{.BranchID}}</p>
  <p>Check-ins: {{.CheckIns}} | Check-outs: {{.CheckOuts}} | Occupancy: {{printf "%.2f" .OccupancyRate}}%</p>
  <p>Room revenue: {{.RoomRevenue.StringFixed 2}} | GST: {{.GSTCollected.StringFixed 2}} | Billed: {{.TotalBilled.StringFixed 2}}</p>

  <h3>Payments</h3>
  <table>
    <thead><tr><th>Method</th><th>Payments</th><th>Amount</th></tr></thead>
    <tbody>{{range .ByPayment}}<tr><td>{{.Method}}</td><td style="text-align:right;">{{.Payments}}</td><td style="text-align:right;">{{.Amount.StringFixed 2}}</td></tr>{{end}}</tbody>
    <tfoot><tr><th colspan="2">Total</th><td style="text-align:right;">{{.PaymentsTotal.StringFixed 2}}</td></tr></tfoot>
  </table>
</body>
</html>
`))

func dailyReportToPrintableHTML(report domain.DailyReport) string {
	var buf bytes.Buffer
	if err := dailyReportHTMLTmpl.Execute(&buf, report); err != nil {
		return "<!doctype html><html><body><p>Report rendering error.</p></body></html>"
	}
	return buf.String()
}
