package document

import (
	"strings"

	"github.com/jwalitptl/clinic-ledger/internal/model"
)

const InvoiceTitle = "TREATMENT INVOICE"

// Invoice section names.
const (
	SectionHeader    = "header"
	SectionPatient   = "patient"
	SectionTreatment = "treatment"
	SectionPayments  = "payments"
	SectionTotals    = "totals"
	SectionNotes     = "notes"
	SectionFooter    = "footer"
)

// ClinicInfo is printed in the invoice header and footer.
type ClinicInfo struct {
	Name    string
	Address string
	Phone   string
	Footer  string
}

// BuildInvoice lays out the invoice of snap. A missing treatment record
// prints blank text and a zero amount.
func BuildInvoice(clinic ClinicInfo, snap *model.Snapshot) *Layout {
	p := snap.Patient
	header := Section{Name: SectionHeader, Lines: nonEmpty(clinic.Name, clinic.Address, clinic.Phone)}

	patient := Section{
		Name:  SectionPatient,
		Title: "Patient",
		Fields: []Field{
			{"Patient Name", p.Name},
			{"Mobile", p.Mobile},
			{"City", p.City},
			{"Appointment Date", date(p.AppointmentDate)},
			{"Problem", p.Problem},
		},
	}

	var plan, consultant, lab string
	if t := snap.Treatment; t != nil {
		plan, consultant, lab = t.Plan, t.Consultant, t.Lab
	}
	treatment := Section{
		Name:  SectionTreatment,
		Title: "Treatment",
		Fields: []Field{
			{"Treatment Plan", plan},
			{"Consultant", consultant},
			{"Lab", lab},
		},
	}

	rows := make([][]string, 0, len(snap.Payments))
	for _, pay := range snap.Payments {
		rows = append(rows, []string{date(pay.PaymentDate), string(pay.Mode), Money(pay.Amount)})
	}
	payments := Section{
		Name:  SectionPayments,
		Title: "Payments",
		Table: &Table{Columns: []string{"Date", "Mode", "Amount"}, Rows: rows},
	}

	totals := Section{
		Name: SectionTotals,
		Fields: []Field{
			{"Total Amount", Money(snap.Totals.TotalAmount)},
			{"Total Paid", Money(snap.Totals.TotalPaid)},
			{"Balance", Money(snap.Totals.Balance)},
		},
	}

	layout := &Layout{
		Title:     InvoiceTitle,
		Sections:  []Section{header, patient, treatment, payments, totals},
		Timestamp: p.CreatedAt,
	}

	if len(snap.Notes) > 0 {
		noteRows := make([][]string, 0, len(snap.Notes))
		for _, n := range snap.Notes {
			noteRows = append(noteRows, []string{date(n.NoteDate), n.Body})
		}
		layout.Sections = append(layout.Sections, Section{
			Name:  SectionNotes,
			Title: "Treatment History",
			Table: &Table{Columns: []string{"Date", "Note"}, Rows: noteRows},
		})
	}

	if footer := strings.TrimSpace(clinic.Footer); footer != "" {
		layout.Sections = append(layout.Sections, Section{Name: SectionFooter, Lines: []string{footer}})
	}
	return layout
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
