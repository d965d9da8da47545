package inventory

import (
	"strconv"

	"github.com/mdfakih/inventory-backend/pkg/enums"
	pkgerrors "github.com/mdfakih/inventory-backend/pkg/errors"
)

// Key addresses exactly one quantity counter in the ledger. RefCode carries
// the kind-specific lookup value: stone number, paper or plastic width in
// inches, tape name. InventoryType is required for stones and paper, which
// are partitioned between shop-owned and customer-supplied pools, and must be
// empty for plastic and tape.
type Key struct {
	Kind          enums.MaterialKind
	RefCode       string
	InventoryType enums.InventoryType
}

// StoneKey builds a ledger key for a stone counter.
func StoneKey(number string, inventoryType enums.InventoryType) Key {
	return Key{Kind: enums.MaterialKindStones, RefCode: number, InventoryType: inventoryType}
}

// PaperKey builds a ledger key for a paper roll counter.
func PaperKey(width int, inventoryType enums.InventoryType) Key {
	return Key{Kind: enums.MaterialKindPaper, RefCode: strconv.Itoa(width), InventoryType: inventoryType}
}

// PlasticKey builds a ledger key for a plastic sheet counter.
func PlasticKey(width int) Key {
	return Key{Kind: enums.MaterialKindPlastic, RefCode: strconv.Itoa(width)}
}

// TapeKey builds a ledger key for a tape counter.
func TapeKey(name string) Key {
	return Key{Kind: enums.MaterialKindTape, RefCode: name}
}

// Validate checks the key's shape without touching storage.
func (k Key) Validate() error {
	if !k.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid material kind").
			WithDetails(map[string]string{"kind": k.Kind.String()})
	}
	if k.RefCode == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "inventory key ref code required")
	}
	switch k.Kind {
	case enums.MaterialKindStones, enums.MaterialKindPaper:
		if !k.InventoryType.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "inventory type required for partitioned kinds").
				WithDetails(map[string]string{"kind": k.Kind.String()})
		}
	default:
		if k.InventoryType != "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "inventory type not applicable").
				WithDetails(map[string]string{"kind": k.Kind.String()})
		}
	}
	if k.Kind == enums.MaterialKindPaper {
		width, err := strconv.Atoi(k.RefCode)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "paper width must be numeric")
		}
		if _, err := enums.ParsePaperWidth(width); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "unsupported paper width").
				WithDetails(map[string]string{"width": k.RefCode})
		}
	}
	if k.Kind == enums.MaterialKindPlastic {
		if _, err := strconv.Atoi(k.RefCode); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "plastic width must be numeric")
		}
	}
	return nil
}

func unknownKey(k Key) *pkgerrors.Error {
	details := map[string]string{
		"kind": k.Kind.String(),
		"ref":  k.RefCode,
	}
	if k.InventoryType != "" {
		details["inventory_type"] = k.InventoryType.String()
	}
	return pkgerrors.New(pkgerrors.CodeUnknownInventoryKey, "inventory record not found").WithDetails(details)
}
