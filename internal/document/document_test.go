package document

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jwalitptl/clinic-ledger/internal/ledger"
	"github.com/jwalitptl/clinic-ledger/internal/model"
)

var clinic = ClinicInfo{Name: "Dr C Krishnarjuna Rao's Dental Clinic", Footer: "Thank you"}

func snapshot() *model.Snapshot {
	patient := &model.Patient{
		Base:            model.Base{ID: 1, CreatedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)},
		AppointmentDate: model.NewDate(2024, 3, 1),
		Name:            "Lakshmi",
		Type:            model.PatientTypeNew,
		Mobile:          "+919999999999",
		City:            "Tenali",
		Problem:         "Sensitivity",
	}
	treatment := &model.TreatmentRecord{PatientID: 1, Plan: "RCT", FinalAmount: decimal.NewFromInt(5000), Consultant: "Dr Rao", Lab: "Smile Lab"}
	payments := []*model.Payment{
		{Base: model.Base{ID: 2}, PatientID: 1, PaymentDate: model.NewDate(2024, 3, 2), Amount: decimal.NewFromInt(1000), Mode: model.PaymentModeUPI},
		{Base: model.Base{ID: 3}, PatientID: 1, PaymentDate: model.NewDate(2024, 3, 9), Amount: decimal.NewFromInt(2000), Mode: model.PaymentModeCard},
	}
	return &model.Snapshot{
		Patient:   patient,
		Treatment: treatment,
		Payments:  payments,
		Totals:    ledger.Compute(treatment, payments),
	}
}

func TestBuildInvoice(t *testing.T) {
	layout := BuildInvoice(clinic, snapshot())

	assert.Equal(t, InvoiceTitle, layout.Title)
	assert.Equal(t, []string{clinic.Name}, layout.Section(SectionHeader).Lines)

	name, ok := layout.Section(SectionPatient).Value("Patient Name")
	require.True(t, ok)
	assert.Equal(t, "Lakshmi", name)

	plan, _ := layout.Section(SectionTreatment).Value("Treatment Plan")
	assert.Equal(t, "RCT", plan)

	table := layout.Section(SectionPayments).Table
	require.NotNil(t, table)
	assert.Equal(t, [][]string{
		{"2024-03-02", "UPI", "1000.00"},
		{"2024-03-09", "Card", "2000.00"},
	}, table.Rows)

	totals := layout.Section(SectionTotals)
	for label, want := range map[string]string{"Total Amount": "5000.00", "Total Paid": "3000.00", "Balance": "2000.00"} {
		got, ok := totals.Value(label)
		require.True(t, ok, label)
		assert.Equal(t, want, got, label)
	}

	assert.Nil(t, layout.Section(SectionNotes))
	assert.NotNil(t, layout.Section(SectionFooter))
}

func TestBuildInvoiceWithoutTreatment(t *testing.T) {
	snap := snapshot()
	snap.Treatment = nil
	snap.Payments = nil
	snap.Totals = ledger.Compute(nil, nil)
	snap.Notes = []*model.TreatmentNote{{NoteDate: model.NewDate(2024, 3, 1), Body: "Consultation"}}

	layout := BuildInvoice(ClinicInfo{Name: "Clinic"}, snap)

	plan, ok := layout.Section(SectionTreatment).Value("Treatment Plan")
	require.True(t, ok)
	assert.Empty(t, plan)
	balance, _ := layout.Section(SectionTotals).Value("Balance")
	assert.Equal(t, "0.00", balance)
	assert.Empty(t, layout.Section(SectionPayments).Table.Rows)
	assert.Len(t, layout.Section(SectionNotes).Table.Rows, 1)
	assert.Nil(t, layout.Section(SectionFooter))
}

func TestRenderPDFIsDeterministic(t *testing.T) {
	layout := BuildInvoice(clinic, snapshot())

	var first, second bytes.Buffer
	require.NoError(t, RenderPDF(layout, &first))
	require.NoError(t, RenderPDF(BuildInvoice(clinic, snapshot()), &second))

	assert.True(t, bytes.HasPrefix(first.Bytes(), []byte("%PDF-")))
	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestRenderPDFEmbedsUnicodeFont(t *testing.T) {
	snap := snapshot()
	snap.Patient.Name = "Дмитрий Łukasz Ñúñez"

	var buf bytes.Buffer
	require.NoError(t, RenderPDF(BuildInvoice(clinic, snap), &buf))

	out := bytes.ToLower(buf.Bytes())
	assert.True(t, bytes.Contains(out, []byte("/basefont /utf8dejavu")))
	assert.True(t, bytes.Contains(out, []byte("/encoding /identity-h")))
	assert.False(t, bytes.Contains(out, []byte("/basefont /helvetica")))
}

func summaryRows() []model.SummaryRow {
	return []model.SummaryRow{
		{PatientID: 2, AppointmentDate: model.NewDate(2024, 5, 1), Name: "B", Mobile: "+912222222222", City: "Guntur",
			Totals: model.Totals{TotalAmount: decimal.NewFromInt(3000), TotalPaid: decimal.NewFromInt(3500), Balance: decimal.NewFromInt(-500)}},
		{PatientID: 1, AppointmentDate: model.NewDate(2024, 3, 1), Name: "A", Mobile: "+911111111111", City: "Tenali",
			Totals: model.Totals{TotalAmount: decimal.NewFromInt(5000), TotalPaid: decimal.NewFromInt(3000), Balance: decimal.NewFromInt(2000)}},
	}
}

func TestBuildSummary(t *testing.T) {
	table := BuildSummary(summaryRows())
	assert.Equal(t, SummaryColumns, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"2024-05-01", "B", "+912222222222", "Guntur", "3000.00", "3500.00", "-500.00"}, table.Rows[0])
}

func TestWriteSummaryCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, FormatCSV, summaryRows()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, SummaryColumns, records[0])
	assert.Equal(t, "A", records[2][1])
	assert.Equal(t, "2000.00", records[2][6])
}

func TestWriteSummaryXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, FormatXLSX, summaryRows()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet}, f.GetSheetList())
	rows, err := f.GetRows(SummarySheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, SummaryColumns, rows[0])
	assert.Equal(t, []string{"2024-05-01", "B", "+912222222222", "Guntur", "3000.00", "3500.00", "-500.00"}, rows[1])
	assert.Equal(t, "2000.00", rows[2][6])
}

func TestWriteSummaryXLSXKeepsExactAmounts(t *testing.T) {
	big := decimal.RequireFromString("12345678901234567.89")
	rows := []model.SummaryRow{{
		PatientID: 1, AppointmentDate: model.NewDate(2024, 3, 1), Name: "A", Mobile: "+911111111111", City: "Tenali",
		Totals: model.Totals{TotalAmount: big, TotalPaid: decimal.RequireFromString("0.10"), Balance: big.Sub(decimal.RequireFromString("0.10"))},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, FormatXLSX, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	for cell, want := range map[string]string{"E2": "12345678901234567.89", "F2": "0.10", "G2": "12345678901234567.79"} {
		got, err := f.GetCellValue(SummarySheet, cell, excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		assert.Equal(t, want, got, cell)
	}
}

func TestWriteSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, FormatXLSX, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)

	day := time.Date(2024, 7, 4, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, "patients_financial_report_2024-07-04.csv", FormatCSV.FileName(day))
}
