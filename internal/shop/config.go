// Package shop defines the generated shop configuration model: the
// behavioral switches that control event synthesis and the evaluation
// context derived from them. Configurations are produced by Generator
// and are fully determined by a seed and a difficulty level.
package shop

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidConfig reports a configuration that violates one of the
// cross-field invariants or carries an unknown option value. Callers
// can match it with errors.Is.
var ErrInvalidConfig = errors.New("invalid shop configuration")

// TransactionConfig controls how sales are recorded.
type TransactionConfig struct {
	Grain            TransactionGrain `json:"grain" yaml:"grain"`
	MultiplePayments bool             `json:"multiple_payments" yaml:"multiple_payments"`
	VoidsEnabled     bool             `json:"voids_enabled" yaml:"voids_enabled"`
	ManualOverrides  bool             `json:"manual_overrides" yaml:"manual_overrides"`
}

func (c TransactionConfig) validate() error {
	if !c.Grain.valid() {
		return fmt.Errorf("%w: unknown transaction grain %q", ErrInvalidConfig, c.Grain)
	}
	return nil
}

// TimeConfig controls the shop's temporal semantics.
type TimeConfig struct {
	TimestampBusinessDateRelation TimestampBusinessDateRelation `json:"timestamp_business_date_relation" yaml:"timestamp_business_date_relation"`
	LateArrivingEvents            bool                          `json:"late_arriving_events" yaml:"late_arriving_events"`
	BackdatedCorrections          bool                          `json:"backdated_corrections" yaml:"backdated_corrections"`
}

func (c TimeConfig) validate() error {
	if !c.TimestampBusinessDateRelation.valid() {
		return fmt.Errorf("%w: unknown timestamp relation %q", ErrInvalidConfig, c.TimestampBusinessDateRelation)
	}
	return nil
}

// ProductConfig controls the product catalog's behavior over time.
type ProductConfig struct {
	SKUReuse                 bool                            `json:"sku_reuse" yaml:"sku_reuse"`
	HierarchyChangeFrequency ProductHierarchyChangeFrequency `json:"hierarchy_change_frequency" yaml:"hierarchy_change_frequency"`
	BundledProducts          bool                            `json:"bundled_products" yaml:"bundled_products"`
	VirtualProducts          bool                            `json:"virtual_products" yaml:"virtual_products"`
}

func (c ProductConfig) validate() error {
	if !c.HierarchyChangeFrequency.valid() {
		return fmt.Errorf("%w: unknown hierarchy change frequency %q", ErrInvalidConfig, c.HierarchyChangeFrequency)
	}
	return nil
}

// CustomerConfig controls customer identity semantics.
type CustomerConfig struct {
	AnonymousAllowed  bool                  `json:"anonymous_allowed" yaml:"anonymous_allowed"`
	IDReliability     CustomerIDReliability `json:"customer_id_reliability" yaml:"customer_id_reliability"`
	HouseholdGrouping bool                  `json:"household_grouping" yaml:"household_grouping"`
}

func (c CustomerConfig) validate() error {
	if !c.IDReliability.valid() {
		return fmt.Errorf("%w: unknown customer id reliability %q", ErrInvalidConfig, c.IDReliability)
	}
	// Households are groupings of identified customers.
	if c.HouseholdGrouping && c.IDReliability == CustomerIDAbsent {
		return fmt.Errorf("%w: household grouping requires customer ids", ErrInvalidConfig)
	}
	return nil
}

// StoreConfig controls the shop's channels and store estate.
type StoreConfig struct {
	PhysicalStores    bool `json:"physical_stores" yaml:"physical_stores"`
	OnlineChannel     bool `json:"online_channel" yaml:"online_channel"`
	CrossStoreReturns bool `json:"cross_store_returns" yaml:"cross_store_returns"`
	LifecycleChanges  bool `json:"store_lifecycle_changes" yaml:"store_lifecycle_changes"`
}

func (c StoreConfig) validate() error {
	if !c.PhysicalStores && !c.OnlineChannel {
		return fmt.Errorf("%w: at least one sales channel required", ErrInvalidConfig)
	}
	if c.CrossStoreReturns && !c.PhysicalStores {
		return fmt.Errorf("%w: cross-store returns require physical stores", ErrInvalidConfig)
	}
	return nil
}

// PromotionConfig controls promotion semantics.
type PromotionConfig struct {
	PerLineItem     PromotionsPerLineItem `json:"promotions_per_line_item" yaml:"promotions_per_line_item"`
	Stackable       bool                  `json:"stackable_promotions" yaml:"stackable_promotions"`
	BasketLevel     bool                  `json:"basket_level_promotions" yaml:"basket_level_promotions"`
	PostTransaction bool                  `json:"post_transaction_promotions" yaml:"post_transaction_promotions"`
}

func (c PromotionConfig) validate() error {
	if !c.PerLineItem.valid() {
		return fmt.Errorf("%w: unknown promotions per line item %q", ErrInvalidConfig, c.PerLineItem)
	}
	if c.Stackable && c.PerLineItem != PromotionsMany {
		return fmt.Errorf("%w: stackable promotions require promotions_per_line_item=many", ErrInvalidConfig)
	}
	return nil
}

// ReturnsConfig controls return event semantics.
type ReturnsConfig struct {
	ReferencePolicy ReturnsReferencePolicy `json:"reference_policy" yaml:"reference_policy"`
	PricingPolicy   ReturnsPricingPolicy   `json:"pricing_policy" yaml:"pricing_policy"`
}

func (c ReturnsConfig) validate() error {
	if !c.ReferencePolicy.valid() {
		return fmt.Errorf("%w: unknown returns reference policy %q", ErrInvalidConfig, c.ReferencePolicy)
	}
	if !c.PricingPolicy.valid() {
		return fmt.Errorf("%w: unknown returns pricing policy %q", ErrInvalidConfig, c.PricingPolicy)
	}
	return nil
}

// InventoryConfig controls inventory tracking.
type InventoryConfig struct {
	Tracked bool          `json:"tracked" yaml:"tracked"`
	Type    InventoryType `json:"inventory_type,omitempty" yaml:"inventory_type,omitempty"`
}

func (c InventoryConfig) validate() error {
	if c.Tracked {
		if !c.Type.valid() {
			return fmt.Errorf("%w: tracked inventory requires an inventory type", ErrInvalidConfig)
		}
		return nil
	}
	if c.Type != "" {
		return fmt.Errorf("%w: inventory type set but inventory not tracked", ErrInvalidConfig)
	}
	return nil
}

// Configuration is the complete behavioral description of a generated
// shop. Together with an event log seed it fully determines the event
// stream a simulation produces.
type Configuration struct {
	Seed     uint32 `json:"seed" yaml:"seed"`
	ShopName string `json:"shop_name" yaml:"shop_name"`

	Transactions TransactionConfig `json:"transactions" yaml:"transactions"`
	Time         TimeConfig        `json:"time" yaml:"time"`
	Products     ProductConfig     `json:"products" yaml:"products"`
	Customers    CustomerConfig    `json:"customers" yaml:"customers"`
	Stores       StoreConfig       `json:"stores" yaml:"stores"`
	Promotions   PromotionConfig   `json:"promotions" yaml:"promotions"`
	Returns      ReturnsConfig     `json:"returns" yaml:"returns"`
	Inventory    InventoryConfig   `json:"inventory" yaml:"inventory"`
}

// Validate checks every option value and cross-field invariant. A
// Configuration produced by Generator always validates; one decoded
// from an external document may not.
func (c Configuration) Validate() error {
	if c.ShopName == "" {
		return fmt.Errorf("%w: shop name is empty", ErrInvalidConfig)
	}
	if err := c.Transactions.validate(); err != nil {
		return err
	}
	if err := c.Time.validate(); err != nil {
		return err
	}
	if err := c.Products.validate(); err != nil {
		return err
	}
	if err := c.Customers.validate(); err != nil {
		return err
	}
	if err := c.Stores.validate(); err != nil {
		return err
	}
	if err := c.Promotions.validate(); err != nil {
		return err
	}
	if err := c.Returns.validate(); err != nil {
		return err
	}
	return c.Inventory.validate()
}

// HasReturns reports whether the shop produces return events at all.
func (c Configuration) HasReturns() bool {
	return c.Returns.ReferencePolicy != ReturnsReferenceNever
}

// HasInventory reports whether the shop produces inventory events.
func (c Configuration) HasInventory() bool {
	return c.Inventory.Tracked
}

// HasVoids reports whether the shop produces void events.
func (c Configuration) HasVoids() bool {
	return c.Transactions.VoidsEnabled
}

// HasCorrections reports whether the shop produces backdated correction
// events.
func (c Configuration) HasCorrections() bool {
	return c.Time.BackdatedCorrections
}

// Parse decodes a configuration document and validates it. Invalid
// documents are rejected rather than partially accepted.
func Parse(data []byte) (Configuration, error) {
	var c Configuration
	if err := json.Unmarshal(data, &c); err != nil {
		return Configuration{}, fmt.Errorf("failed to parse shop configuration: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Configuration{}, err
	}
	return c, nil
}
