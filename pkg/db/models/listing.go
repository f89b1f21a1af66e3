package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"

	"github.com/aarav-aiphi/Backend/pkg/enums"
)

// CompanyResources groups outbound links published alongside a listing.
type CompanyResources struct {
	Website        string   `json:"website,omitempty"`
	OtherResources []string `json:"otherResources,omitempty"`
}

// Listing is a published (or moderated) AI agent entry in the directory.
type Listing struct {
	ID                 uuid.UUID                            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name               string                               `gorm:"column:name;not null;uniqueIndex:listings_name_key"`
	CreatedBy          *string                              `gorm:"column:created_by"`
	WebsiteURL         string                               `gorm:"column:website_url;not null"`
	ContactEmail       *string                              `gorm:"column:contact_email"`
	OwnerEmail         *string                              `gorm:"column:owner_email"`
	AccessModel        enums.AccessModel                    `gorm:"column:access_model;not null"`
	PricingModel       enums.PricingModel                   `gorm:"column:pricing_model;not null"`
	Category           string                               `gorm:"column:category;not null;index"`
	Industry           string                               `gorm:"column:industry;not null"`
	Tagline            *string                              `gorm:"column:tagline"`
	ShortDescription   *string                              `gorm:"column:short_description"`
	Description        *string                              `gorm:"column:description"`
	KeyFeatures        pq.StringArray                       `gorm:"column:key_features;type:text[]"`
	UseCases           pq.StringArray                       `gorm:"column:use_cases;type:text[]"`
	Tags               pq.StringArray                       `gorm:"column:tags;type:text[]"`
	Gallery            pq.StringArray                       `gorm:"column:gallery;type:text[]"`
	UseRole            *string                              `gorm:"column:use_role"`
	Logo               *string                              `gorm:"column:logo"`
	Thumbnail          *string                              `gorm:"column:thumbnail"`
	VideoURL           *string                              `gorm:"column:video_url"`
	IsHiring           bool                                 `gorm:"column:is_hiring;not null;default:false"`
	Featured           bool                                 `gorm:"column:featured;not null;default:false"`
	Likes              int                                  `gorm:"column:likes;not null;default:0"`
	TriedBy            int                                  `gorm:"column:tried_by;not null;default:0"`
	SavedByCount       int                                  `gorm:"column:saved_by_count;not null;default:0"`
	PopularityScore    int                                  `gorm:"column:popularity_score;not null;default:0"`
	ReviewRatings      float64                              `gorm:"column:review_ratings;not null;default:0"`
	VotesThisMonth     int                                  `gorm:"column:votes_this_month;not null;default:0"`
	IntegrationSupport string                               `gorm:"column:integration_support;not null;default:'None'"`
	Price              *string                              `gorm:"column:price"`
	IndividualPlan     *string                              `gorm:"column:individual_plan"`
	EnterprisePlan     *string                              `gorm:"column:enterprise_plan"`
	FreeTrial          bool                                 `gorm:"column:free_trial;not null;default:false"`
	SubscriptionModel  *string                              `gorm:"column:subscription_model"`
	RefundPolicy       *string                              `gorm:"column:refund_policy"`
	CompanyResources   datatypes.JSONType[CompanyResources] `gorm:"column:company_resources"`
	Status             enums.ListingStatus                  `gorm:"column:status;not null;default:'requested'"`
	Version            int                                  `gorm:"column:version;not null;default:0"`
	CreatedAt          time.Time                            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                            `gorm:"column:updated_at;autoUpdateTime"`
}

// ComputePopularity returns the popularity score for the given counters.
func ComputePopularity(triedBy, likes, savedBy int) int {
	return triedBy + 2*likes + 2*savedBy
}

// RefreshPopularity recomputes PopularityScore from the stored counters.
func (l *Listing) RefreshPopularity() {
	l.PopularityScore = ComputePopularity(l.TriedBy, l.Likes, l.SavedByCount)
}
