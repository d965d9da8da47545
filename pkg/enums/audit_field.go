package enums

// AuditField names an order field whose change is recorded in the audit
// trail. Typed so the audit table never carries free-form field names.
type AuditField string

const (
	AuditFieldStatus           AuditField = "status"
	AuditFieldDiscount         AuditField = "discount"
	AuditFieldStonesUsed       AuditField = "stones_used"
	AuditFieldPaperUsed        AuditField = "paper_used"
	AuditFieldFinalTotalWeight AuditField = "final_total_weight"
	AuditFieldPaymentStatus    AuditField = "payment_status"
	AuditFieldModeOfPayment    AuditField = "mode_of_payment"
	AuditFieldFinalized        AuditField = "finalized"
)

// String implements fmt.Stringer.
func (f AuditField) String() string {
	return string(f)
}
