// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// DefaultSiteName is used until an admin saves a site name.
const DefaultSiteName = "My CMS"

// Settings is the site-wide configuration singleton.
type Settings struct {
	SiteName           string    `json:"siteName"`
	SiteURL            string    `json:"siteUrl"`
	LogoURL            string    `json:"logoUrl"`
	AuthorName         string    `json:"authorName"`
	OrganizationName   string    `json:"organizationName"`
	GA4ID              string    `json:"ga4Id"`
	AdsenseID          string    `json:"adsenseId"`
	BingVerificationID string    `json:"bingVerificationId"`
	CustomHeadCode     string    `json:"customHeadCode"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Publisher returns the organization name used in structured data,
// falling back to the site name.
func (s *Settings) Publisher() string {
	if s.OrganizationName != "" {
		return s.OrganizationName
	}
	return s.SiteName
}

// SettingsPatch carries a partial settings update. Nil fields are left
// unchanged.
type SettingsPatch struct {
	SiteName           *string `json:"siteName"`
	SiteURL            *string `json:"siteUrl"`
	LogoURL            *string `json:"logoUrl"`
	AuthorName         *string `json:"authorName"`
	OrganizationName   *string `json:"organizationName"`
	GA4ID              *string `json:"ga4Id"`
	AdsenseID          *string `json:"adsenseId"`
	BingVerificationID *string `json:"bingVerificationId"`
	CustomHeadCode     *string `json:"customHeadCode"`
}

// Empty reports whether the patch changes nothing.
func (p *SettingsPatch) Empty() bool {
	return p.SiteName == nil && p.SiteURL == nil && p.LogoURL == nil &&
		p.AuthorName == nil && p.OrganizationName == nil && p.GA4ID == nil &&
		p.AdsenseID == nil && p.BingVerificationID == nil && p.CustomHeadCode == nil
}
