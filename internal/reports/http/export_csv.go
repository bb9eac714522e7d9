package http

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/benfund/benfund/internal/reports"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	if s == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if !strings.HasSuffix(line, "\r\n") {
		line = strings.TrimSuffix(line, "\n")
		line += "\r\n"
	}
	if _, err := s.buf.WriteString(line); err != nil {
		return err
	}
	return nil
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

func (s *csvStreamer) Close() error {
	return s.Flush()
}

func writeMetadata(streamer *csvStreamer, reportName string, meta reports.Meta) error {
	if err := streamer.writeComment(fmt.Sprintf("# Report: %s", reportName)); err != nil {
		return err
	}
	if err := streamer.writeComment(fmt.Sprintf("# Period: %s", meta.Label)); err != nil {
		return err
	}
	if err := streamer.writeComment(fmt.Sprintf("# Subscription Rate: %s", formatAmount(meta.Rate))); err != nil {
		return err
	}
	if err := streamer.writeComment(fmt.Sprintf("# Generated: %s", meta.GeneratedAt.Format("2006-01-02 15:04:05 MST"))); err != nil {
		return err
	}
	for _, warning := range meta.Warnings {
		if err := streamer.writeComment("# Warning: " + warning); err != nil {
			return err
		}
	}
	return nil
}

func writeMovementCSV(w io.Writer, report reports.MovementReport) error {
	streamer := newCSVStreamer(w)
	if err := writeMetadata(streamer, "Membership Movement", report.Meta); err != nil {
		return err
	}
	header := []string{
		"Unit Code", "Unit Name",
		"Previous", "New", "Transferred In", "Transferred Out",
		"Closed (Expired/Retired)", "Closed (Doubling)",
		"Total In", "Total Out", "Actual Members",
		"Subscription Due", "Arrears", "Total Payable", "Received", "Balance",
	}
	if err := streamer.writeRow(header); err != nil {
		return err
	}
	for _, row := range report.Rows {
		if err := streamer.writeRow([]string{
			row.UnitCode,
			row.UnitName,
			formatCount(row.PreviousMembers),
			formatCount(row.NewMembers),
			formatCount(row.TransferredIn),
			formatCount(row.TransferredOut),
			formatCount(row.ClosedExpiredRetired),
			formatCount(row.ClosedDoubling),
			formatCount(row.TotalIn),
			formatCount(row.TotalOut),
			formatCount(row.ActualMembers),
			formatAmount(row.SubscriptionDue),
			formatAmount(row.Arrears),
			formatAmount(row.TotalPayable),
			formatAmount(row.Received),
			formatAmount(row.Balance),
		}); err != nil {
			return err
		}
	}
	t := report.Totals
	if err := streamer.writeRow([]string{
		"", "Totals",
		formatCount(t.PreviousMembers),
		formatCount(t.NewMembers),
		formatCount(t.TransferredIn),
		formatCount(t.TransferredOut),
		formatCount(t.ClosedExpiredRetired),
		formatCount(t.ClosedDoubling),
		formatCount(t.TotalIn),
		formatCount(t.TotalOut),
		formatCount(t.ActualMembers),
		formatAmount(t.SubscriptionDue),
		formatAmount(t.Arrears),
		formatAmount(t.TotalPayable),
		formatAmount(t.Received),
		formatAmount(t.Balance),
	}); err != nil {
		return err
	}
	return streamer.Close()
}

func writeDuesCSV(w io.Writer, report reports.DuesReport) error {
	streamer := newCSVStreamer(w)
	if err := writeMetadata(streamer, "Dues and Arrears", report.Meta); err != nil {
		return err
	}
	if report.UnitID > 0 {
		if err := streamer.writeComment("# Unit Filter: " + strconv.FormatInt(report.UnitID, 10)); err != nil {
			return err
		}
	}
	header := []string{
		"Member Code", "Name", "Rank", "Unit",
		"Payable Months", "Subscription Due", "Arrears",
		"Total Payable", "Received", "Balance",
	}
	if err := streamer.writeRow(header); err != nil {
		return err
	}
	for _, row := range report.Rows {
		if err := streamer.writeRow([]string{
			row.MemberCode,
			row.Name,
			row.Rank,
			row.UnitName,
			formatCount(row.PayableMonths),
			formatAmount(row.SubscriptionDue),
			formatAmount(row.Arrears),
			formatAmount(row.TotalPayable),
			formatAmount(row.Received),
			formatAmount(row.Balance),
		}); err != nil {
			return err
		}
	}
	t := report.Totals
	if err := streamer.writeRow([]string{
		"", "Totals", "", "", "",
		formatAmount(t.SubscriptionDue),
		formatAmount(t.Arrears),
		formatAmount(t.TotalPayable),
		formatAmount(t.Received),
		formatAmount(t.Balance),
	}); err != nil {
		return err
	}
	return streamer.Close()
}

func writeCollectionsCSV(w io.Writer, report reports.CollectionsReport) error {
	streamer := newCSVStreamer(w)
	if err := writeMetadata(streamer, "Subscription Collections", report.Meta); err != nil {
		return err
	}
	header := []string{"Unit Code", "Unit Name", "Payments", "Months Covered", "Received"}
	if err := streamer.writeRow(header); err != nil {
		return err
	}
	for _, row := range report.Rows {
		if err := streamer.writeRow([]string{
			row.UnitCode,
			row.UnitName,
			formatCount(row.Payments),
			formatCount(row.MonthsCovered),
			formatAmount(row.Received),
		}); err != nil {
			return err
		}
	}
	t := report.Totals
	if err := streamer.writeRow([]string{
		"", "Totals",
		formatCount(t.Payments),
		formatCount(t.MonthsCovered),
		formatAmount(t.Received),
	}); err != nil {
		return err
	}
	return streamer.Close()
}
