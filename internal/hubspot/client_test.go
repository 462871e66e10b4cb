package hubspot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"linklead-engine/internal/mapping"
)

func TestSubmitCreatesAndAssociates(t *testing.T) {
	var dealBody struct {
		Properties   map[string]string `json:"properties"`
		Associations []struct {
			To    map[string]string `json:"to"`
			Types []struct {
				Category string `json:"associationCategory"`
				TypeID   int    `json:"associationTypeId"`
			} `json:"types"`
		} `json:"associations"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization = %q", got)
		}
		switch r.URL.Path {
		case "/crm/v3/objects/companies":
			json.NewEncoder(w).Encode(map[string]string{"id": "c-1"})
		case "/crm/v3/objects/deals":
			if err := json.NewDecoder(r.Body).Decode(&dealBody); err != nil {
				t.Fatalf("decode deal body: %v", err)
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "d-1"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New("tok", WithBaseURL(srv.URL))
	companyID, dealID, err := c.Submit(context.Background(), mapping.Payload{
		Company: mapping.ObjectPayload{Properties: mapping.PropertySet{"name": "Acme"}},
		Deal:    mapping.ObjectPayload{Properties: mapping.PropertySet{"dealname": "Dev at Acme"}},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if companyID != "c-1" || dealID != "d-1" {
		t.Errorf("ids = %q, %q", companyID, dealID)
	}

	if len(dealBody.Associations) != 1 {
		t.Fatalf("associations = %+v", dealBody.Associations)
	}
	assoc := dealBody.Associations[0]
	if assoc.To["id"] != "c-1" {
		t.Errorf("association target = %q", assoc.To["id"])
	}
	if len(assoc.Types) != 1 || assoc.Types[0].TypeID != 1 || assoc.Types[0].Category != "HUBSPOT_DEFINED" {
		t.Errorf("association types = %+v", assoc.Types)
	}
	if dealBody.Properties["dealname"] != "Dev at Acme" {
		t.Errorf("deal properties = %+v", dealBody.Properties)
	}
}

func TestCreateDealWithoutCompany(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if _, ok := body["associations"]; ok {
			t.Error("no associations expected without a company id")
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "d-2"})
	}))
	defer srv.Close()

	c := New("tok", WithBaseURL(srv.URL))
	id, err := c.CreateDeal(context.Background(), mapping.PropertySet{"dealname": "x"}, "")
	if err != nil {
		t.Fatalf("CreateDeal: %v", err)
	}
	if id != "d-2" {
		t.Errorf("id = %q", id)
	}
}

func TestAPIErrorSurfacesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Property \"bogus\" does not exist"}`))
	}))
	defer srv.Close()

	c := New("tok", WithBaseURL(srv.URL))
	_, err := c.CreateCompany(context.Background(), mapping.PropertySet{"bogus": "x"})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("status = %d", apiErr.Status)
	}
	if apiErr.Body == "" {
		t.Error("body must carry the upstream message")
	}
}

func TestSubmitKeepsOrphanCompanyOnDealFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/crm/v3/objects/companies":
			json.NewEncoder(w).Encode(map[string]string{"id": "c-9"})
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer srv.Close()

	c := New("tok", WithBaseURL(srv.URL))
	companyID, dealID, err := c.Submit(context.Background(), mapping.Payload{})
	if err == nil {
		t.Fatal("expected error")
	}
	// The company id comes back so the caller can record what exists upstream.
	if companyID != "c-9" || dealID != "" {
		t.Errorf("ids = %q, %q", companyID, dealID)
	}
}

func TestAPIVersionOption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/crm/v4/objects/deals" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New("tok", WithBaseURL(srv.URL), WithAPIVersion("v4"))
	if err := c.TestConnection(context.Background()); err != nil {
		t.Fatalf("TestConnection: %v", err)
	}
}
