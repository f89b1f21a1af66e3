package listings

import (
	"strings"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/db/models"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ListingDTO is the public shape of a listing.
type ListingDTO struct {
	ID                 uuid.UUID               `json:"id"`
	Name               string                  `json:"name"`
	CreatedBy          *string                 `json:"createdBy,omitempty"`
	WebsiteURL         string                  `json:"websiteUrl"`
	ContactEmail       *string                 `json:"contactEmail,omitempty"`
	OwnerEmail         *string                 `json:"ownerEmail,omitempty"`
	AccessModel        enums.AccessModel       `json:"accessModel"`
	PricingModel       enums.PricingModel      `json:"pricingModel"`
	Category           string                  `json:"category"`
	Industry           string                  `json:"industry"`
	Tagline            *string                 `json:"tagline,omitempty"`
	ShortDescription   *string                 `json:"shortDescription,omitempty"`
	Description        *string                 `json:"description,omitempty"`
	KeyFeatures        []string                `json:"keyFeatures"`
	UseCases           []string                `json:"useCases"`
	Tags               []string                `json:"tags"`
	Gallery            []string                `json:"gallery"`
	UseRole            *string                 `json:"useRole,omitempty"`
	Logo               *string                 `json:"logo,omitempty"`
	Thumbnail          *string                 `json:"thumbnail,omitempty"`
	VideoURL           *string                 `json:"videoUrl,omitempty"`
	IsHiring           bool                    `json:"isHiring"`
	Featured           bool                    `json:"featured"`
	Likes              int                     `json:"likes"`
	TriedBy            int                     `json:"triedBy"`
	SavedByCount       int                     `json:"savedByCount"`
	PopularityScore    int                     `json:"popularityScore"`
	ReviewRatings      float64                 `json:"reviewRatings"`
	VotesThisMonth     int                     `json:"votesThisMonth"`
	IntegrationSupport string                  `json:"integrationSupport"`
	Price              *string                 `json:"price,omitempty"`
	IndividualPlan     *string                 `json:"individualPlan,omitempty"`
	EnterprisePlan     *string                 `json:"enterprisePlan,omitempty"`
	FreeTrial          bool                    `json:"freeTrial"`
	SubscriptionModel  *string                 `json:"subscriptionModel,omitempty"`
	RefundPolicy       *string                 `json:"refundPolicy,omitempty"`
	CompanyResources   models.CompanyResources `json:"companyResources"`
	Status             enums.ListingStatus     `json:"status"`
	Version            int                     `json:"version"`
	CreatedAt          time.Time               `json:"createdAt"`
	UpdatedAt          time.Time               `json:"updatedAt"`
}

// FromModel converts a persisted listing into its public shape.
func FromModel(l *models.Listing) *ListingDTO {
	if l == nil {
		return nil
	}
	return &ListingDTO{
		ID:                 l.ID,
		Name:               l.Name,
		CreatedBy:          l.CreatedBy,
		WebsiteURL:         l.WebsiteURL,
		ContactEmail:       l.ContactEmail,
		OwnerEmail:         l.OwnerEmail,
		AccessModel:        l.AccessModel,
		PricingModel:       l.PricingModel,
		Category:           l.Category,
		Industry:           l.Industry,
		Tagline:            l.Tagline,
		ShortDescription:   l.ShortDescription,
		Description:        l.Description,
		KeyFeatures:        copyStrings(l.KeyFeatures),
		UseCases:           copyStrings(l.UseCases),
		Tags:               copyStrings(l.Tags),
		Gallery:            copyStrings(l.Gallery),
		UseRole:            l.UseRole,
		Logo:               l.Logo,
		Thumbnail:          l.Thumbnail,
		VideoURL:           l.VideoURL,
		IsHiring:           l.IsHiring,
		Featured:           l.Featured,
		Likes:              l.Likes,
		TriedBy:            l.TriedBy,
		SavedByCount:       l.SavedByCount,
		PopularityScore:    l.PopularityScore,
		ReviewRatings:      l.ReviewRatings,
		VotesThisMonth:     l.VotesThisMonth,
		IntegrationSupport: l.IntegrationSupport,
		Price:              l.Price,
		IndividualPlan:     l.IndividualPlan,
		EnterprisePlan:     l.EnterprisePlan,
		FreeTrial:          l.FreeTrial,
		SubscriptionModel:  l.SubscriptionModel,
		RefundPolicy:       l.RefundPolicy,
		CompanyResources:   l.CompanyResources.Data(),
		Status:             l.Status,
		Version:            l.Version,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

// FromModels converts a slice of listings.
func FromModels(rows []models.Listing) []ListingDTO {
	out := make([]ListingDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

// FiltersDTO lists the distinct facet values of accepted listings.
type FiltersDTO struct {
	Categories    []string `json:"categories"`
	Industries    []string `json:"industries"`
	PricingModels []string `json:"pricingModels"`
	AccessModels  []string `json:"accessModels"`
}

// SimilarDTO pairs a listing with its closest accepted matches.
type SimilarDTO struct {
	Listing     *ListingDTO  `json:"agent"`
	BestMatches []ListingDTO `json:"bestMatches"`
}

func copyStrings(in pq.StringArray) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func stringArray(in []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
