/*
Copyright 2024 Inlet Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package model

import "time"

// Contact is a person tracked across projects. A contact can carry several
// e-mail aliases; identity resolution during import is by exact e-mail match.
type Contact struct {
	ID        int64     `json:"-"`
	ContactID string    `json:"contact_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Roles     string    `json:"roles"`
	Emails    []string  `json:"emails"`
	CreatedAt time.Time `json:"created_at"`
}

// VisionModel is one hardware catalog row inside a project. SKU is unique
// per project and is the identity used for duplicate detection on upload.
type VisionModel struct {
	ID        int64     `json:"-"`
	ModelID   string    `json:"model_id"`
	ProjectID string    `json:"project_id"`
	SKU       string    `json:"sku"`
	Line      string    `json:"line"`
	Position  string    `json:"position"`
	Equipment string    `json:"equipment"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// ConfigurationKey returns the line/position/equipment combination used by
// the advisory matcher to flag unusual configurations.
func (v VisionModel) ConfigurationKey() string {
	return v.Line + " " + v.Position + " " + v.Equipment
}

// Account is a customer account eligible for bulk info updates. Matching is
// fuzzy on CompanyName (and any trading names recorded for the account).
type Account struct {
	ID           int64      `json:"-"`
	AccountID    string     `json:"account_id"`
	CompanyName  string     `json:"company_name"`
	TradingNames []string   `json:"trading_names"`
	Status       string     `json:"status"`
	HealthScore  *float64   `json:"health_score,omitempty"`
	RenewalDate  *time.Time `json:"renewal_date,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AccountUpdate carries the fields a bulk update is allowed to overwrite.
// Nil means "leave unchanged".
type AccountUpdate struct {
	Status      *string    `json:"status,omitempty"`
	HealthScore *float64   `json:"health_score,omitempty"`
	RenewalDate *time.Time `json:"renewal_date,omitempty"`
}

// Project is the target context contacts and vision models are linked to.
type Project struct {
	ID        int64     `json:"-"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Customer  string    `json:"customer"`
	CreatedAt time.Time `json:"created_at"`
}
