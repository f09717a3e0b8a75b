package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIsParty(t *testing.T) {
	customer := primitive.NewObjectID()
	stuker := primitive.NewObjectID()
	outsider := primitive.NewObjectID()

	unassigned := &Order{CustomerID: customer}
	if !unassigned.IsParty(customer) {
		t.Error("customer must be a party")
	}
	if unassigned.IsParty(stuker) {
		t.Error("unassigned order has no stuker party")
	}

	assigned := &Order{CustomerID: customer, StukerID: &stuker}
	if !assigned.IsParty(stuker) {
		t.Error("assigned stuker must be a party")
	}
	if assigned.IsParty(outsider) {
		t.Error("outsider must not be a party")
	}
}
