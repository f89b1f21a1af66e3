package enums

import "fmt"

// ListingStatus is the moderation lifecycle of a listing.
type ListingStatus string

const (
	ListingStatusRequested ListingStatus = "requested"
	ListingStatusAccepted  ListingStatus = "accepted"
	ListingStatusRejected  ListingStatus = "rejected"
	ListingStatusOnHold    ListingStatus = "onHold"
)

var validListingStatuses = []ListingStatus{
	ListingStatusRequested,
	ListingStatusAccepted,
	ListingStatusRejected,
	ListingStatusOnHold,
}

// String implements fmt.Stringer.
func (s ListingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ListingStatus.
func (s ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseListingStatus converts raw input into a ListingStatus.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}

// AccessModel describes how a listed agent is distributed.
type AccessModel string

const (
	AccessModelOpenSource   AccessModel = "Open Source"
	AccessModelClosedSource AccessModel = "Closed Source"
	AccessModelAPI          AccessModel = "API"
)

var validAccessModels = []AccessModel{
	AccessModelOpenSource,
	AccessModelClosedSource,
	AccessModelAPI,
}

// String implements fmt.Stringer.
func (a AccessModel) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AccessModel.
func (a AccessModel) IsValid() bool {
	for _, candidate := range validAccessModels {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAccessModel converts raw input into an AccessModel.
func ParseAccessModel(value string) (AccessModel, error) {
	for _, candidate := range validAccessModels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid access model %q", value)
}

// PricingModel describes how a listed agent charges.
type PricingModel string

const (
	PricingModelFree     PricingModel = "Free"
	PricingModelFreemium PricingModel = "Freemium"
	PricingModelPaid     PricingModel = "Paid"
)

var validPricingModels = []PricingModel{
	PricingModelFree,
	PricingModelFreemium,
	PricingModelPaid,
}

// String implements fmt.Stringer.
func (p PricingModel) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PricingModel.
func (p PricingModel) IsValid() bool {
	for _, candidate := range validPricingModels {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePricingModel converts raw input into a PricingModel.
func ParsePricingModel(value string) (PricingModel, error) {
	for _, candidate := range validPricingModels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pricing model %q", value)
}
