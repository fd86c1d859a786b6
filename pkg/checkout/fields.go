package checkout

import "github.com/goliatone/go-checkoutform/pkg/model"

// Field keys. They match the billing keys the host platform already stores,
// so values round-trip through its order and customer records.
const (
	FieldInvoiceRequest = "billing_invoice_request"
	FieldPersonType     = "billing_person_type"
	FieldFirstName      = "billing_first_name"
	FieldLastName       = "billing_last_name"
	FieldNationalCode   = "billing_national_code"
	FieldCompanyName    = "billing_company_name"
	FieldEconomicCode   = "billing_economic_code"
	FieldAgentFirstName = "billing_agent_first_name"
	FieldAgentLastName  = "billing_agent_last_name"
	FieldState          = "billing_state"
	FieldCity           = "billing_city"
	FieldAddress        = "billing_address_1"
	FieldPostcode       = "billing_postcode"
	FieldPhone          = "billing_phone"
	FieldOrderComments  = "order_comments"
)

const (
	PersonTypeReal       = "real"
	PersonTypeLegal      = "legal"
	PersonTypeUnselected = ""
)

// Host field sections.
const (
	HostBillingSection = "billing"
	HostOrderSection   = "order"
)

// Layout identifiers double as CSS classes in the rendered markup.
const (
	FormClass         = "ccif-checkout-form"
	BoxClass          = "ccif-box"
	SectionInvoice    = "invoice-request-box"
	SectionPerson     = "person-info-box"
	SectionAddress    = "address-info-box"
	SectionOrderNotes = "order-notes-box"
	GroupRealPerson   = "ccif-real-person-fields-wrapper"
	GroupLegalPerson  = "ccif-legal-person-fields-wrapper"

	ClassPersonField      = "ccif-person-field"
	ClassRealPersonField  = "ccif-real-person-field"
	ClassLegalPersonField = "ccif-legal-person-field"
	ClassAddressField     = "ccif-address-field"
	ClassInvoiceField     = "ccif-invoice-request-field"
	ClassRequired         = "ccif-is-required"
)

const (
	SelectPlaceholder = "انتخاب کنید"
	CityPlaceholder   = "ابتدا استان را انتخاب کنید"

	titlePerson     = "اطلاعات خریدار"
	titleAddress    = "اطلاعات ارسال"
	titleOrderNotes = "توضیحات تکمیلی"
	invoiceHint     = "در صورت نیاز به فاکتور رسمی، این گزینه را انتخاب و تمام اطلاعات خریدار را به دقت وارد نمایید. در غیر این صورت، تنها تکمیل اطلاعات ارسال کافی است."
)

// Rules attached as field metadata and evaluated by pkg/visibility.
const (
	RuleRealPerson       = `billing_person_type == "real"`
	RuleLegalPerson      = `billing_person_type == "legal"`
	RuleInvoiceRequested = `checked(billing_invoice_request)`
)

// PersistedFields lists the fields copied to the customer's profile after a
// successful checkout, in display order.
var PersistedFields = []string{
	FieldPersonType,
	FieldNationalCode,
	FieldCompanyName,
	FieldEconomicCode,
	FieldAgentFirstName,
	FieldAgentLastName,
}

// PersonTypes returns the person type options including the placeholder.
func PersonTypes() []model.Option {
	return []model.Option{
		{Value: PersonTypeUnselected, Label: SelectPlaceholder},
		{Value: PersonTypeReal, Label: "حقیقی"},
		{Value: PersonTypeLegal, Label: "حقوقی"},
	}
}
