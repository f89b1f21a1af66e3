package listings

import (
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aarav-aiphi/Backend/pkg/db/models"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"gorm.io/datatypes"
)

const (
	MaxNameLength       = 35
	MaxWebsiteURLLength = 100
	DefaultIntegration  = "None"
)

// Fields is a partial set of listing attributes. Nil pointers are left
// untouched when applied to an existing listing.
type Fields struct {
	Name               *string                  `json:"name,omitempty"`
	CreatedBy          *string                  `json:"createdBy,omitempty"`
	WebsiteURL         *string                  `json:"websiteUrl,omitempty"`
	ContactEmail       *string                  `json:"contactEmail,omitempty"`
	OwnerEmail         *string                  `json:"ownerEmail,omitempty"`
	AccessModel        *enums.AccessModel       `json:"accessModel,omitempty"`
	PricingModel       *enums.PricingModel      `json:"pricingModel,omitempty"`
	Category           *string                  `json:"category,omitempty"`
	Industry           *string                  `json:"industry,omitempty"`
	Tagline            *string                  `json:"tagline,omitempty"`
	ShortDescription   *string                  `json:"shortDescription,omitempty"`
	Description        *string                  `json:"description,omitempty"`
	KeyFeatures        *[]string                `json:"keyFeatures,omitempty"`
	UseCases           *[]string                `json:"useCases,omitempty"`
	Tags               *[]string                `json:"tags,omitempty"`
	Gallery            *[]string                `json:"gallery,omitempty"`
	UseRole            *string                  `json:"useRole,omitempty"`
	Logo               *string                  `json:"logo,omitempty"`
	Thumbnail          *string                  `json:"thumbnail,omitempty"`
	VideoURL           *string                  `json:"videoUrl,omitempty"`
	IsHiring           *bool                    `json:"isHiring,omitempty"`
	Featured           *bool                    `json:"featured,omitempty"`
	FreeTrial          *bool                    `json:"freeTrial,omitempty"`
	Price              *string                  `json:"price,omitempty"`
	IndividualPlan     *string                  `json:"individualPlan,omitempty"`
	EnterprisePlan     *string                  `json:"enterprisePlan,omitempty"`
	SubscriptionModel  *string                  `json:"subscriptionModel,omitempty"`
	RefundPolicy       *string                  `json:"refundPolicy,omitempty"`
	IntegrationSupport *string                  `json:"integrationSupport,omitempty"`
	CompanyResources   *models.CompanyResources `json:"companyResources,omitempty"`
	Status             *enums.ListingStatus     `json:"status,omitempty"`
}

// IsEmpty reports whether no attribute is set.
func (f Fields) IsEmpty() bool {
	return len(f.Columns()) == 0
}

// ValidateCreate checks that every attribute a new listing needs is present
// and well formed.
func (f Fields) ValidateCreate() error {
	required := []struct {
		field string
		value *string
	}{
		{"name", f.Name},
		{"websiteUrl", f.WebsiteURL},
		{"category", f.Category},
		{"industry", f.Industry},
	}
	for _, r := range required {
		if r.value == nil || strings.TrimSpace(*r.value) == "" {
			return fieldError(r.field, "is required")
		}
	}
	if f.AccessModel == nil {
		return fieldError("accessModel", "is required")
	}
	if f.PricingModel == nil {
		return fieldError("pricingModel", "is required")
	}
	return f.Validate()
}

// Validate checks the attributes that are present.
func (f Fields) Validate() error {
	if f.Name != nil {
		name := strings.TrimSpace(*f.Name)
		if name == "" {
			return fieldError("name", "must not be blank")
		}
		if utf8.RuneCountInString(name) > MaxNameLength {
			return fieldError("name", "must be at most "+strconv.Itoa(MaxNameLength)+" characters")
		}
	}
	if f.WebsiteURL != nil {
		if strings.TrimSpace(*f.WebsiteURL) == "" {
			return fieldError("websiteUrl", "must not be blank")
		}
		if utf8.RuneCountInString(*f.WebsiteURL) > MaxWebsiteURLLength {
			return fieldError("websiteUrl", "must be at most "+strconv.Itoa(MaxWebsiteURLLength)+" characters")
		}
	}
	if f.AccessModel != nil && !f.AccessModel.IsValid() {
		return fieldError("accessModel", "is invalid")
	}
	if f.PricingModel != nil && !f.PricingModel.IsValid() {
		return fieldError("pricingModel", "is invalid")
	}
	if f.Status != nil && !f.Status.IsValid() {
		return fieldError("status", "is invalid")
	}
	for name, addr := range map[string]*string{"ownerEmail": f.OwnerEmail, "contactEmail": f.ContactEmail} {
		if addr == nil || *addr == "" {
			continue
		}
		if _, err := mail.ParseAddress(*addr); err != nil {
			return fieldError(name, "must be a valid email")
		}
	}
	return nil
}

// Columns maps the set attributes onto listing column names.
func (f Fields) Columns() map[string]any {
	cols := map[string]any{}
	setString := func(col string, v *string) {
		if v != nil {
			cols[col] = strings.TrimSpace(*v)
		}
	}
	setList := func(col string, v *[]string) {
		if v != nil {
			cols[col] = stringArray(*v)
		}
	}
	setBool := func(col string, v *bool) {
		if v != nil {
			cols[col] = *v
		}
	}

	setString("name", f.Name)
	setString("created_by", f.CreatedBy)
	setString("website_url", f.WebsiteURL)
	setString("contact_email", f.ContactEmail)
	setString("owner_email", f.OwnerEmail)
	if f.AccessModel != nil {
		cols["access_model"] = *f.AccessModel
	}
	if f.PricingModel != nil {
		cols["pricing_model"] = *f.PricingModel
	}
	setString("category", f.Category)
	setString("industry", f.Industry)
	setString("tagline", f.Tagline)
	setString("short_description", f.ShortDescription)
	setString("description", f.Description)
	setList("key_features", f.KeyFeatures)
	setList("use_cases", f.UseCases)
	setList("tags", f.Tags)
	setList("gallery", f.Gallery)
	setString("use_role", f.UseRole)
	setString("logo", f.Logo)
	setString("thumbnail", f.Thumbnail)
	setString("video_url", f.VideoURL)
	setBool("is_hiring", f.IsHiring)
	setBool("featured", f.Featured)
	setBool("free_trial", f.FreeTrial)
	setString("price", f.Price)
	setString("individual_plan", f.IndividualPlan)
	setString("enterprise_plan", f.EnterprisePlan)
	setString("subscription_model", f.SubscriptionModel)
	setString("refund_policy", f.RefundPolicy)
	setString("integration_support", f.IntegrationSupport)
	if f.CompanyResources != nil {
		cols["company_resources"] = datatypes.NewJSONType(*f.CompanyResources)
	}
	if f.Status != nil {
		cols["status"] = *f.Status
	}
	return cols
}

// ToModel builds a new listing from the attributes. Callers validate first.
func (f Fields) ToModel() *models.Listing {
	l := &models.Listing{
		IntegrationSupport: DefaultIntegration,
		Status:             enums.ListingStatusRequested,
		KeyFeatures:        stringArray(nil),
		UseCases:           stringArray(nil),
		Tags:               stringArray(nil),
		Gallery:            stringArray(nil),
	}
	f.ApplyTo(l)
	return l
}

// ApplyTo copies the set attributes onto l.
func (f Fields) ApplyTo(l *models.Listing) {
	if l == nil {
		return
	}
	str := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	opt := func(dst **string, v *string) {
		if v != nil {
			trimmed := strings.TrimSpace(*v)
			*dst = &trimmed
		}
	}

	str(&l.Name, f.Name)
	opt(&l.CreatedBy, f.CreatedBy)
	str(&l.WebsiteURL, f.WebsiteURL)
	opt(&l.ContactEmail, f.ContactEmail)
	opt(&l.OwnerEmail, f.OwnerEmail)
	if f.AccessModel != nil {
		l.AccessModel = *f.AccessModel
	}
	if f.PricingModel != nil {
		l.PricingModel = *f.PricingModel
	}
	str(&l.Category, f.Category)
	str(&l.Industry, f.Industry)
	opt(&l.Tagline, f.Tagline)
	opt(&l.ShortDescription, f.ShortDescription)
	opt(&l.Description, f.Description)
	if f.KeyFeatures != nil {
		l.KeyFeatures = stringArray(*f.KeyFeatures)
	}
	if f.UseCases != nil {
		l.UseCases = stringArray(*f.UseCases)
	}
	if f.Tags != nil {
		l.Tags = stringArray(*f.Tags)
	}
	if f.Gallery != nil {
		l.Gallery = stringArray(*f.Gallery)
	}
	opt(&l.UseRole, f.UseRole)
	opt(&l.Logo, f.Logo)
	opt(&l.Thumbnail, f.Thumbnail)
	opt(&l.VideoURL, f.VideoURL)
	if f.IsHiring != nil {
		l.IsHiring = *f.IsHiring
	}
	if f.Featured != nil {
		l.Featured = *f.Featured
	}
	if f.FreeTrial != nil {
		l.FreeTrial = *f.FreeTrial
	}
	opt(&l.Price, f.Price)
	opt(&l.IndividualPlan, f.IndividualPlan)
	opt(&l.EnterprisePlan, f.EnterprisePlan)
	opt(&l.SubscriptionModel, f.SubscriptionModel)
	opt(&l.RefundPolicy, f.RefundPolicy)
	str(&l.IntegrationSupport, f.IntegrationSupport)
	if f.CompanyResources != nil {
		l.CompanyResources = datatypes.NewJSONType(*f.CompanyResources)
	}
	if f.Status != nil {
		l.Status = *f.Status
	}
}

// FieldsFromRecord reads listing attributes from flat string values keyed by
// their JSON names, as found in CSV rows and multipart forms. Blank values are
// skipped and list attributes are comma separated.
func FieldsFromRecord(record map[string]string) (Fields, error) {
	var f Fields
	get := func(key string) *string {
		v, ok := record[key]
		if !ok {
			return nil
		}
		v = strings.TrimSpace(v)
		if v == "" {
			return nil
		}
		return &v
	}
	list := func(key string) *[]string {
		v := get(key)
		if v == nil {
			return nil
		}
		items := SplitList(*v)
		return &items
	}
	boolean := func(key string) (*bool, error) {
		v := get(key)
		if v == nil {
			return nil, nil
		}
		b, err := strconv.ParseBool(*v)
		if err != nil {
			return nil, fieldError(key, "must be true or false")
		}
		return &b, nil
	}

	f.Name = get("name")
	f.CreatedBy = get("createdBy")
	f.WebsiteURL = get("websiteUrl")
	f.ContactEmail = get("contactEmail")
	f.OwnerEmail = get("ownerEmail")
	if v := get("accessModel"); v != nil {
		m := enums.AccessModel(*v)
		f.AccessModel = &m
	}
	if v := get("pricingModel"); v != nil {
		m := enums.PricingModel(*v)
		f.PricingModel = &m
	}
	f.Category = get("category")
	f.Industry = get("industry")
	f.Tagline = get("tagline")
	f.ShortDescription = get("shortDescription")
	f.Description = get("description")
	f.KeyFeatures = list("keyFeatures")
	f.UseCases = list("useCases")
	f.Tags = list("tags")
	f.Gallery = list("gallery")
	f.UseRole = get("useRole")
	f.VideoURL = get("videoUrl")
	f.Price = get("price")
	f.IndividualPlan = get("individualPlan")
	f.EnterprisePlan = get("enterprisePlan")
	f.SubscriptionModel = get("subscriptionModel")
	f.RefundPolicy = get("refundPolicy")
	f.IntegrationSupport = get("integrationSupport")
	if v := get("website"); v != nil {
		f.CompanyResources = &models.CompanyResources{Website: *v}
	}

	var err error
	if f.IsHiring, err = boolean("isHiring"); err != nil {
		return Fields{}, err
	}
	if f.Featured, err = boolean("featured"); err != nil {
		return Fields{}, err
	}
	if f.FreeTrial, err = boolean("freeTrial"); err != nil {
		return Fields{}, err
	}
	return f, nil
}

// SplitList splits a comma separated value, dropping blank items.
func SplitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fieldError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, field+" "+msg).
		WithDetails(map[string]any{"field": field})
}
