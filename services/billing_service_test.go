package services

import "testing"

func TestPlanGates(t *testing.T) {
	if CanJoinChallenges("Free") {
		t.Error("free plan should not join challenges")
	}
	if !CanJoinChallenges("Home Cook") || !CanJoinChallenges("Head Chef") {
		t.Error("paid plans should join challenges")
	}
	if CanJoinChallenges("Nonsense") {
		t.Error("unknown plans are treated as free")
	}

	if HasMealPlanning("Free") {
		t.Error("free plan should not have meal planning")
	}
	if !HasMealPlanning("Home Cook") {
		t.Error("Home Cook should have meal planning")
	}
}

func TestMaxRecipesForPlan(t *testing.T) {
	if got := MaxRecipesForPlan("Free"); got != 10 {
		t.Errorf("Free cap = %d, want 10", got)
	}
	if got := MaxRecipesForPlan("Home Cook"); got != 100 {
		t.Errorf("Home Cook cap = %d, want 100", got)
	}
	if got := MaxRecipesForPlan("Head Chef"); got != -1 {
		t.Errorf("Head Chef cap = %d, want unlimited (-1)", got)
	}
	if got := MaxRecipesForPlan("Nonsense"); got != 10 {
		t.Errorf("unknown plan cap = %d, want the free cap", got)
	}
}
