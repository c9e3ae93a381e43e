package services

import (
	"context"
	"errors"
	"testing"

	"punebus-backend/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnquiryLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewEnquiryService(newFakeEnquiryRepo())
	staff := principal("acct", domain.RoleAccountant)

	enquiry, err := svc.Create(ctx, &CreateEnquiryInput{Name: " Meera ", Phone: "9000", Service: "parcel"})
	require.NoError(t, err)
	assert.Equal(t, "Meera", enquiry.Name)
	assert.Equal(t, "pending", enquiry.Status)

	_, err = svc.Create(ctx, &CreateEnquiryInput{Name: "No phone"})
	require.Error(t, err)
	assert.Equal(t, "Missing required fields: phone", err.Error())

	out, err := svc.List(ctx, staff, &ListEnquiriesInput{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)

	_, err = svc.List(ctx, staff, &ListEnquiriesInput{Status: "archived"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	updated, err := svc.UpdateStatus(ctx, staff, enquiry.ID, "done")
	require.NoError(t, err)
	assert.Equal(t, "done", updated.Status)

	_, err = svc.UpdateStatus(ctx, staff, enquiry.ID, "closed")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = svc.UpdateStatus(ctx, staff, "nonexistent-id", "done")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	assert.True(t, errors.Is(svc.Delete(ctx, staff, enquiry.ID), domain.ErrForbidden))
	require.NoError(t, svc.Delete(ctx, principal("admin", domain.RoleAdmin), enquiry.ID))
	assert.True(t, errors.Is(svc.Delete(ctx, principal("admin", domain.RoleAdmin), enquiry.ID), domain.ErrNotFound))
}

func TestEnquiryList_PartnerForbidden(t *testing.T) {
	svc := NewEnquiryService(newFakeEnquiryRepo())

	_, err := svc.List(context.Background(), principal("r", domain.RoleRestaurant), &ListEnquiriesInput{})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}
