package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethpandaops/semlook/pkg/models"
	"github.com/stretchr/testify/require"
)

// RentalsYAML declares rentals -> facilities (forward) and reviews -> rentals
// (reverse). Only the reviews.rental entity is marked complete.
const RentalsYAML = `
data_models:
  - name: rentals
    schema: analytics
    table: rentals
  - name: facilities
    schema_name: analytics
    table: facilities
  - name: reviews
    catalog: warehouse
    schema: analytics
    table: reviews

semantic_models:
  - name: rentals
    model: rentals
    description: One row per rental
    date_selector: true
    entities:
      - name: rental
        type: primary
        expr: rental_id
      - name: facility
        type: foreign
        expr: facility_id
    dimensions:
      - name: status
        type: categorical
        meta:
          subject: Rentals
          category: Status
      - name: created_at
        type: time
        granularity: day
        primary_variant: utc
        variants:
          utc: created_at
          local: created_at_local
    measures:
      - name: rental_count
        agg: count
      - name: revenue
        agg: sum
        expr: amount
        format: usd
        filter:
          - field: status
            operator: "="
            value: completed
    metrics:
      - name: total_revenue
        type: simple
        measure: revenue
        label: Total Revenue
        pop:
          comparisons: [prior_year, prior_month]
          outputs: [previous, percent_change]

  - name: facilities
    model: facilities
    entities:
      - name: facility
        type: primary
        expr: facility_id
    dimensions:
      - name: city
        type: categorical
        meta:
          hierarchy:
            entity: Facility
            category: Location
            subcategory: City
    measures:
      - name: facility_count
        agg: count_distinct
        expr: facility_id

  - name: reviews
    model: reviews
    entities:
      - name: review
        type: primary
        expr: review_id
      - name: rental
        type: foreign
        expr: rental_id
        complete: true
    dimensions:
      - name: rating
        type: categorical
    measures:
      - name: review_count
        agg: count
      - name: avg_rating
        agg: avg
        expr: rating

metrics:
  - name: reviews_per_rental
    type: ratio
    numerator: review_count
    denominator: rental_count
    entity: rental
  - name: revenue_per_facility
    type: derived
    expr: total_revenue / facilities
    metrics:
      - total_revenue
      - name: facility_total
        alias: facilities
  - name: facility_total
    type: simple
    type_params:
      measure:
        name: facility_count
`

// ConversionYAML links orders to searches through the search entity
const ConversionYAML = `
semantic_models:
  - name: orders
    entities:
      - name: order
        type: primary
        expr: order_id
      - name: search
        type: foreign
        expr: search_id
    measures:
      - name: completed_orders
        agg: count
  - name: searches
    entities:
      - name: search
        type: primary
        expr: search_id
    measures:
      - name: total_searches
        agg: count
metrics:
  - name: conversion_rate
    type: ratio
    numerator: completed_orders
    denominator: total_searches
`

// DisconnectedConversionYAML is ConversionYAML without the orders.search link
const DisconnectedConversionYAML = `
semantic_models:
  - name: orders
    entities:
      - name: order
        type: primary
        expr: order_id
    measures:
      - name: completed_orders
        agg: count
  - name: searches
    entities:
      - name: search
        type: primary
        expr: search_id
    measures:
      - name: total_searches
        agg: count
metrics:
  - name: conversion_rate
    type: ratio
    numerator: completed_orders
    denominator: total_searches
`

// Documents parses a YAML fixture into loader documents
func Documents(t *testing.T, content string) []models.Document {
	t.Helper()

	docs, err := models.ParseDocuments("fixture.yaml", []byte(content))
	require.NoError(t, err)

	return docs
}

// WriteFiles writes files (relative path -> content) under a temp dir and
// returns the dir
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	return dir
}
