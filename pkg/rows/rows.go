// Package rows converts between store rows and domain records.
// Column names are the spreadsheet headers the tables have always used.
package rows

import (
	"fmt"
	"time"

	"github.com/aretw0/sitepass/pkg/domain"
	"github.com/aretw0/sitepass/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

type conversationRow struct {
	Email        string `mapstructure:"Email ID"`
	SenderDomain string `mapstructure:"Sender Domain"`
	CompanyName  string `mapstructure:"Company Name"`
	Subject      string `mapstructure:"Subject"`
	Status       string `mapstructure:"Status"`
	LastUpdated  string `mapstructure:"Last Updated"`
	Label        string `mapstructure:"Sender Domain + Subject"`
}

type inductionRow struct {
	Company string `mapstructure:"Company"`
	Name    string `mapstructure:"Name"`
	Expiry  string `mapstructure:"Expiry Date (Auto)"`
}

type maintenanceRow struct {
	Equipment string `mapstructure:"Maintenance subject"`
	Company   string `mapstructure:"Company"`
	Q1        string `mapstructure:"Inspection date Q1"`
	Q2        string `mapstructure:"Inspection date Q2"`
	Q3        string `mapstructure:"Inspection date Q3"`
	Q4        string `mapstructure:"Inspection date Q4"`
}

func decode(r ports.Row, out any) error {
	if err := mapstructure.Decode(map[string]string(r), out); err != nil {
		return fmt.Errorf("failed to decode row: %w", err)
	}
	return nil
}

func encode(in any) ports.Row {
	var m map[string]any
	// Struct to map never fails for the flat string structs above.
	_ = mapstructure.Decode(in, &m)
	row := make(ports.Row, len(m))
	for k, v := range m {
		row[k] = fmt.Sprint(v)
	}
	return row
}

// Conversation decodes a conversations row. An unreadable Last Updated cell
// leaves LastUpdated zero.
func Conversation(r ports.Row) (domain.ConversationRecord, error) {
	var cr conversationRow
	if err := decode(r, &cr); err != nil {
		return domain.ConversationRecord{}, err
	}
	rec := domain.ConversationRecord{
		Email:        cr.Email,
		SenderDomain: cr.SenderDomain,
		CompanyName:  cr.CompanyName,
		Subject:      cr.Subject,
		Status:       domain.ParseStatus(cr.Status),
		Label:        cr.Label,
	}
	if t, err := domain.ParseExpiry(cr.LastUpdated); err == nil {
		rec.LastUpdated = t
	}
	return rec, nil
}

// FromConversation encodes a conversation record as a row.
func FromConversation(rec domain.ConversationRecord) ports.Row {
	return encode(conversationRow{
		Email:        rec.Email,
		SenderDomain: rec.SenderDomain,
		CompanyName:  rec.CompanyName,
		Subject:      rec.Subject,
		Status:       rec.Status.String(),
		LastUpdated:  formatDate(rec.LastUpdated),
		Label:        rec.Label,
	})
}

// Induction decodes an inductions row.
func Induction(r ports.Row) (domain.InductionRecord, error) {
	var ir inductionRow
	if err := decode(r, &ir); err != nil {
		return domain.InductionRecord{}, err
	}
	return domain.InductionRecord(ir), nil
}

// FromInduction encodes an induction record as a row.
func FromInduction(rec domain.InductionRecord) ports.Row {
	return encode(inductionRow(rec))
}

// Maintenance decodes a maintenanceSchedules row.
func Maintenance(r ports.Row) (domain.MaintenanceRecord, error) {
	var mr maintenanceRow
	if err := decode(r, &mr); err != nil {
		return domain.MaintenanceRecord{}, err
	}
	return domain.MaintenanceRecord{
		Equipment: mr.Equipment,
		Company:   mr.Company,
		Slots:     [domain.SlotCount]string{mr.Q1, mr.Q2, mr.Q3, mr.Q4},
	}, nil
}

// FromMaintenance encodes a maintenance record as a row.
func FromMaintenance(rec domain.MaintenanceRecord) ports.Row {
	return encode(maintenanceRow{
		Equipment: rec.Equipment,
		Company:   rec.Company,
		Q1:        rec.Slots[0],
		Q2:        rec.Slots[1],
		Q3:        rec.Slots[2],
		Q4:        rec.Slots[3],
	})
}

// Merge writes the cells of src over dst, keeping columns src does not know.
func Merge(dst, src ports.Row) {
	for k, v := range src {
		dst[k] = v
	}
}

// DecodeAll decodes every row with fn, stopping at the first failure.
func DecodeAll[T any](rs []ports.Row, fn func(ports.Row) (T, error)) ([]T, error) {
	out := make([]T, 0, len(rs))
	for i, r := range rs {
		v, err := fn(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}
