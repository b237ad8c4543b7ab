package payroll

import (
	"fmt"
	"strings"
)

type LineItemKind string

const (
	KindAllowance LineItemKind = "allowance"
	KindDeduction LineItemKind = "deduction"
)

type CategoryCode string

const (
	CategoryFixedAllowance CategoryCode = "fixed_allowance"
	CategoryOvertime       CategoryCode = "overtime"
	CategoryPieceWork      CategoryCode = "piece_work"
	CategoryAbsence        CategoryCode = "absence"
	CategoryUnpaidLeave    CategoryCode = "unpaid_leave"
	CategoryStatutory      CategoryCode = "statutory"
)

type StatutoryKind string

const (
	StatutoryJKK StatutoryKind = "jkk"
	StatutoryJKM StatutoryKind = "jkm"
	StatutoryJHT StatutoryKind = "jht"
	StatutoryJP  StatutoryKind = "jp"
	StatutoryJKN StatutoryKind = "jkn"
)

// StatutoryKinds in the order deductions are produced.
var StatutoryKinds = []StatutoryKind{StatutoryJKK, StatutoryJKM, StatutoryJHT, StatutoryJP, StatutoryJKN}

// LineItemCategory identifies a line item independently of its display label.
// Ref is the piece-work rate id or the statutory kind, empty otherwise.
type LineItemCategory struct {
	Code CategoryCode
	Ref  string
}

func FixedAllowance() LineItemCategory { return LineItemCategory{Code: CategoryFixedAllowance} }
func Overtime() LineItemCategory       { return LineItemCategory{Code: CategoryOvertime} }
func AbsenceDeduction() LineItemCategory {
	return LineItemCategory{Code: CategoryAbsence}
}
func UnpaidLeaveDeduction() LineItemCategory {
	return LineItemCategory{Code: CategoryUnpaidLeave}
}
func PieceWork(rateID string) LineItemCategory {
	return LineItemCategory{Code: CategoryPieceWork, Ref: rateID}
}
func Statutory(kind StatutoryKind) LineItemCategory {
	return LineItemCategory{Code: CategoryStatutory, Ref: string(kind)}
}

// Key is the storage form, e.g. "overtime" or "piece_work:<rate id>".
func (c LineItemCategory) Key() string {
	if c.Ref == "" {
		return string(c.Code)
	}
	return string(c.Code) + ":" + c.Ref
}

func (c LineItemCategory) String() string { return c.Key() }

// ParseCategoryKey is the inverse of Key.
func ParseCategoryKey(key string) (LineItemCategory, error) {
	code, ref, _ := strings.Cut(key, ":")
	c := LineItemCategory{Code: CategoryCode(code), Ref: ref}
	switch c.Code {
	case CategoryFixedAllowance, CategoryOvertime, CategoryAbsence, CategoryUnpaidLeave:
		if ref != "" {
			return LineItemCategory{}, fmt.Errorf("%w: %q", ErrInvalidCategory, key)
		}
	case CategoryPieceWork:
		if ref == "" {
			return LineItemCategory{}, fmt.Errorf("%w: %q", ErrInvalidCategory, key)
		}
	case CategoryStatutory:
		switch StatutoryKind(ref) {
		case StatutoryJKK, StatutoryJKM, StatutoryJHT, StatutoryJP, StatutoryJKN:
		default:
			return LineItemCategory{}, fmt.Errorf("%w: %q", ErrInvalidCategory, key)
		}
	default:
		return LineItemCategory{}, fmt.Errorf("%w: %q", ErrInvalidCategory, key)
	}
	return c, nil
}

func (c LineItemCategory) Kind() LineItemKind {
	switch c.Code {
	case CategoryFixedAllowance, CategoryOvertime, CategoryPieceWork:
		return KindAllowance
	default:
		return KindDeduction
	}
}

// CreateOnce reports whether an existing row keeps its amount on regeneration.
func (c LineItemCategory) CreateOnce() bool {
	return c.Code == CategoryFixedAllowance || c.Code == CategoryPieceWork
}

var statutoryLabels = map[StatutoryKind]string{
	StatutoryJKK: "BPJS TK - JKK Karyawan",
	StatutoryJKM: "BPJS TK - JKM Karyawan",
	StatutoryJHT: "BPJS TK - JHT Karyawan",
	StatutoryJP:  "BPJS TK - JP Karyawan",
	StatutoryJKN: "BPJS Kesehatan Karyawan",
}

// Label returns the payslip label. Piece-work labels need the task, see PieceWorkLabel.
func (c LineItemCategory) Label() string {
	switch c.Code {
	case CategoryFixedAllowance:
		return "Tunjangan Tetap"
	case CategoryOvertime:
		return "Lembur"
	case CategoryAbsence:
		return "Potongan Alfa"
	case CategoryUnpaidLeave:
		return "Potongan Cuti Tanpa Bayar"
	case CategoryStatutory:
		return statutoryLabels[StatutoryKind(c.Ref)]
	case CategoryPieceWork:
		return "Borongan"
	}
	return string(c.Code)
}

func PieceWorkLabel(taskName, unit string) string {
	return fmt.Sprintf("Borongan: %s (%s)", taskName, unit)
}
