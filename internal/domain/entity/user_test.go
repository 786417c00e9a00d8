package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountConstructors(t *testing.T) {
	c := NewCustomer("u1", " Alice@Example.COM ", "hash", "Alice", "0900", testNow)
	assert.Equal(t, "alice@example.com", c.Email)
	assert.Equal(t, RoleCustomer, c.Role)
	assert.Nil(t, c.Company)
	_, ok := c.AsCompany()
	assert.False(t, ok)

	a := NewAdmin("u2", "admin@rescue.local", "hash", "Admin", testNow)
	assert.Equal(t, RoleAdmin, a.Role)
	assert.Nil(t, a.Company)

	k := NewCompany("u3", "k@x.vn", "hash", "Owner", "0901", " Cuu Ho 24h ", testNow)
	profile, ok := k.AsCompany()
	require.True(t, ok)
	assert.Equal(t, CompanyPending, profile.Status)
	assert.Equal(t, "Cuu Ho 24h", profile.Name)
	assert.Equal(t, "Cuu Ho 24h", k.DisplayName())
	assert.Empty(t, profile.Services)
}

func TestCompanyProfile_PriceFor(t *testing.T) {
	p := &CompanyProfile{}
	p.SetServices([]CompanyService{
		{CategoryID: "fuel", BasePrice: 50000},
		{CategoryID: "tire", BasePrice: 80000},
	})

	assert.Equal(t, []string{"fuel", "tire"}, p.ServiceCategoryIDs)

	price, ok := p.PriceFor("tire")
	assert.True(t, ok)
	assert.Equal(t, 80000.0, price)

	_, ok = p.PriceFor("tow")
	assert.False(t, ok)
}
