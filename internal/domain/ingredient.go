package domain

import "math"

// Ingredient is a catalog entry. Catalog rows are created only when seeding.
type Ingredient struct {
	ID       int64
	Name     string
	Type     IngredientType
	Calories int
	Protein  float64
	Price    float64
	Icon     string
	Color    string
}

// Totals is the nutrition and cost aggregate of a set of ingredients.
type Totals struct {
	Calories int
	Protein  float64
	Price    float64
}

// Aggregate sums calories, protein and price over the given ingredients.
// Duplicates count once per occurrence.
func Aggregate(items []Ingredient) Totals {
	var t Totals
	for _, item := range items {
		t.Calories += item.Calories
		t.Protein += item.Protein
		t.Price += item.Price
	}
	return t
}

const totalsTolerance = 0.005

// Matches reports whether two totals are equal, allowing float rounding noise.
func (t Totals) Matches(other Totals) bool {
	return t.Calories == other.Calories &&
		math.Abs(t.Protein-other.Protein) < totalsTolerance &&
		math.Abs(t.Price-other.Price) < totalsTolerance
}

// Target is a per-meal nutrition goal.
type Target struct {
	Calories int
	Protein  float64
}

var DefaultTarget = Target{Calories: 800, Protein: 50}

type Progress struct {
	CaloriesPercent float64
	ProteinPercent  float64
}

// Progress returns the share of the target reached, capped at 100.
func (t Totals) Progress(target Target) Progress {
	return Progress{
		CaloriesPercent: percentOf(float64(t.Calories), float64(target.Calories)),
		ProteinPercent:  percentOf(t.Protein, target.Protein),
	}
}

func percentOf(value, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	return math.Min(value/goal*100, 100)
}
