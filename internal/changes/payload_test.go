package changes

import (
	"encoding/json"
	"testing"

	"github.com/aarav-aiphi/Backend/internal/listings"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
)

func strPtr(v string) *string { return &v }

func createFields(name string) listings.Fields {
	access := enums.AccessModelAPI
	pricing := enums.PricingModelFree
	return listings.Fields{
		Name:         strPtr(name),
		WebsiteURL:   strPtr("https://" + name + ".example"),
		AccessModel:  &access,
		PricingModel: &pricing,
		Category:     strPtr("Writing"),
		Industry:     strPtr("Media"),
	}
}

func TestPayloadRoundTripKeepsTempKeys(t *testing.T) {
	in := UpdatePayload{
		Fields: listings.Fields{Tagline: strPtr("Faster drafts")},
		TempImages: TempImages{
			LogoTempURL:      "https://assets.test/agents/temp/a.png",
			LogoTempPublicID: "agents/temp/a.png",
		},
	}
	raw, err := EncodePayload(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var flat map[string]any
	if err := json.Unmarshal(raw, &flat); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if flat["logoTempPublicId"] != "agents/temp/a.png" || flat["tagline"] != "Faster drafts" {
		t.Fatalf("expected flattened camelCase keys, got %v", flat)
	}
	if _, ok := flat["thumbnailTempUrl"]; ok {
		t.Fatal("expected empty temp fields to be omitted")
	}

	out, err := DecodePayload(enums.ChangeActionUpdate, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	update, ok := out.(UpdatePayload)
	if !ok {
		t.Fatalf("expected update payload, got %T", out)
	}
	if keys := update.TempImages.Keys(); len(keys) != 1 || keys[0] != "agents/temp/a.png" {
		t.Fatalf("unexpected temp keys %v", keys)
	}
}

func TestDecodePayloadRejectsDeleteWithData(t *testing.T) {
	if _, err := DecodePayload(enums.ChangeActionDelete, []byte(`{"name":"x"}`)); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, raw := range [][]byte{nil, []byte("null"), []byte("  ")} {
		p, err := DecodePayload(enums.ChangeActionDelete, raw)
		if err != nil {
			t.Fatalf("expected empty delete payload to decode, got %v", err)
		}
		if _, ok := p.(DeletePayload); !ok {
			t.Fatalf("expected delete payload, got %T", p)
		}
	}
}

func TestDecodePayloadRequiresData(t *testing.T) {
	for _, action := range []enums.ChangeAction{enums.ChangeActionCreate, enums.ChangeActionUpdate, enums.ChangeActionStatusChange} {
		if _, err := DecodePayload(action, nil); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", action, err)
		}
	}
	if _, err := DecodePayload(enums.ChangeActionCreate, []byte(`{"name":`)); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected malformed json to be a validation error, got %v", err)
	}
	if _, err := DecodePayload(enums.ChangeAction("merge"), []byte(`{}`)); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected unknown action to fail, got %v", err)
	}
}

func TestEncodeDeleteStoresNull(t *testing.T) {
	raw, err := EncodePayload(DeletePayload{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(raw) != "null" {
		t.Fatalf("expected null, got %s", raw)
	}
}

func TestNewStatusChangeKeepsInstructionsOnlyOnHold(t *testing.T) {
	if p := NewStatusChange(enums.ListingStatusAccepted, "fix the logo"); p.Instructions != "" {
		t.Fatalf("expected instructions to be dropped, got %q", p.Instructions)
	}
	if p := NewStatusChange(enums.ListingStatusOnHold, "fix the logo"); p.Instructions != "fix the logo" {
		t.Fatalf("expected instructions to be kept, got %q", p.Instructions)
	}
	if err := (StatusChangePayload{Status: "archived"}).Validate(); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected invalid status to fail, got %v", err)
	}
}

func TestUpdatePayloadNeedsAChange(t *testing.T) {
	if err := (UpdatePayload{}).Validate(); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected empty update to fail, got %v", err)
	}
	images := UpdatePayload{TempImages: TempImages{ThumbnailTempPublicID: "agents/temp/t.png"}}
	if err := images.Validate(); err != nil {
		t.Fatalf("expected image-only update to pass, got %v", err)
	}
}

func TestTransition(t *testing.T) {
	cases := []struct {
		from    enums.ChangeStatus
		verdict Verdict
		want    enums.ChangeStatus
		code    pkgerrors.Code
	}{
		{enums.ChangeStatusPending, VerdictApprove, enums.ChangeStatusApproved, ""},
		{enums.ChangeStatusPending, VerdictReject, enums.ChangeStatusRejected, ""},
		{enums.ChangeStatusApproved, VerdictReject, "", pkgerrors.CodeNotFound},
		{enums.ChangeStatusRejected, VerdictApprove, "", pkgerrors.CodeNotFound},
		{enums.ChangeStatusPending, Verdict("defer"), "", pkgerrors.CodeValidation},
	}
	for _, tc := range cases {
		got, err := Transition(tc.from, tc.verdict)
		if tc.code != "" {
			if !pkgerrors.Is(err, tc.code) {
				t.Fatalf("%s/%s: expected %s, got %v", tc.from, tc.verdict, tc.code, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%s/%s: expected %s, got %s (%v)", tc.from, tc.verdict, tc.want, got, err)
		}
	}
}

func TestRejectionReasonDefault(t *testing.T) {
	if r := Reject("").rejectionReason(); r == nil || *r != DefaultRejectionReason {
		t.Fatalf("expected default reason, got %v", r)
	}
	if r := Reject("duplicate").rejectionReason(); *r != "duplicate" {
		t.Fatalf("expected explicit reason, got %s", *r)
	}
	if Approve().rejectionReason() != nil {
		t.Fatal("approvals carry no reason")
	}
}
