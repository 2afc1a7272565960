// Package seed holds the catalog and roster a fresh store starts with.
package seed

import (
	"github.com/erazemk/ppestock/internal/model"
	"github.com/erazemk/ppestock/internal/persist"
)

// State returns a fresh copy of the initial state.
func State() *persist.State {
	return &persist.State{
		Items:        Items(),
		Transactions: []model.Transaction{},
		Roster:       Roster(),
	}
}

// Items returns the initial catalog.
func Items() []model.Item {
	std := func(balance int) []model.Variant {
		return []model.Variant{{Code: "STD", Label: "Standard", Balance: balance}}
	}
	return []model.Item{
		{ID: 1, Category: "Shoes", Name: "Safety Shoe", Brand: "KINGS", Variants: []model.Variant{
			{Code: "8", Label: "Size 8", Balance: 7},
			{Code: "9", Label: "Size 9", Balance: 17},
		}},
		{ID: 2, Category: "Gloves", Name: "Hand Gloves", Brand: "PROSAFE", Variants: std(482)},
		{ID: 3, Category: "Eye Protection", Name: "Safety Glass", Brand: "GENERIC", Variants: std(168)},
		{ID: 4, Category: "Hearing", Name: "Ear Plug", Brand: "GENERIC", Variants: std(200)},
		{ID: 5, Category: "Head Protection", Name: "Safety Helmet (Yellow)", Brand: "GENERIC", Variants: []model.Variant{
			{Code: "S", Label: "Size S", Balance: 6},
			{Code: "M", Label: "Size M", Balance: 20},
			{Code: "L", Label: "Size L", Balance: 10},
		}},
		{ID: 6, Category: "Respiratory", Name: "Mask (N95)", Brand: "GENERIC", Variants: std(47)},
		{ID: 7, Category: "Clothing", Name: "FRC Shirt", Brand: "GENERIC", Variants: []model.Variant{
			{Code: "M", Label: "M", Balance: 10},
			{Code: "L", Label: "L", Balance: 9},
			{Code: "XL", Label: "XL", Balance: 6},
		}},
		{ID: 8, Category: "Clothing", Name: "FRC Pant", Brand: "GENERIC", Variants: []model.Variant{
			{Code: "30", Label: "30", Balance: 8},
			{Code: "32", Label: "32", Balance: 9},
			{Code: "34", Label: "34", Balance: 8},
		}},
		{ID: 9, Category: "Clothing", Name: "Grey Shirt", Brand: "GENERIC", Variants: []model.Variant{
			{Code: "M", Label: "M", Balance: 14},
			{Code: "L", Label: "L", Balance: 13},
			{Code: "XL", Label: "XL", Balance: 13},
		}},
		{ID: 10, Category: "Accessories", Name: "Glove Holder", Brand: "GENERIC", Variants: std(60)},
	}
}

// Roster returns the initial roster of authorized employees.
func Roster() model.Roster {
	return model.Roster{Employees: []model.Employee{
		{Name: "BABU MD SOHAG", Department: "Production", ShoeSize: "8", ShirtSize: "L", PantSize: "32", HelmetSize: "M"},
		{Name: "KABIR MD ALAMGIR", Department: "Maintenance", ShoeSize: "9", ShirtSize: "XL", PantSize: "34", HelmetSize: "L"},
		{Name: "PALANIVEL MANIMARAN", Department: "Quality", ShoeSize: "8", ShirtSize: "M", PantSize: "30", HelmetSize: "M"},
		{Name: "MULLAINATHAN GNANAPRAKASAM", Department: "Production", ShoeSize: "9", ShirtSize: "L", PantSize: "32", HelmetSize: "M"},
		{Name: "BARMON ONEMIS", Department: "Safety", ShoeSize: "8", ShirtSize: "M", PantSize: "30", HelmetSize: "S"},
		{Name: "MIAH MD SUJON", Department: "Production", ShoeSize: "9", ShirtSize: "L", PantSize: "32", HelmetSize: "M"},
		{Name: "MATUBBAR MD SHAHADAT", Department: "Maintenance", ShoeSize: "8", ShirtSize: "XL", PantSize: "34", HelmetSize: "L"},
		{Name: "SHAHADOT MOHAMMAD", Department: "Production", ShoeSize: "9", ShirtSize: "L", PantSize: "32", HelmetSize: "M"},
		{Name: "KANNAN TAMILKUMARAN", Department: "Quality", ShoeSize: "8", ShirtSize: "M", PantSize: "30", HelmetSize: "M"},
		{Name: "SIVAKUMAR MADHAVAN", Department: "Production", ShoeSize: "9", ShirtSize: "L", PantSize: "32", HelmetSize: "M"},
		{Name: "NAEEM MD", Department: "Safety", ShoeSize: "8", ShirtSize: "M", PantSize: "30", HelmetSize: "S"},
		{Name: "MIAH EDUL", Department: "Maintenance", ShoeSize: "9", ShirtSize: "XL", PantSize: "34", HelmetSize: "L"},
		{Name: "SHEIKH MD SHAMIM", Department: "Production", ShoeSize: "8", ShirtSize: "L", PantSize: "32", HelmetSize: "M"},
		{Name: "ISLAM TARIQUL", Department: "Quality", ShoeSize: "9", ShirtSize: "M", PantSize: "30", HelmetSize: "M"},
		{Name: "HOSSAIN MD RAKIB", Department: "Production", ShoeSize: "8", ShirtSize: "L", PantSize: "32", HelmetSize: "M"},
		{Name: "SHAHPARAN", Department: "Maintenance", ShoeSize: "9", ShirtSize: "XL", PantSize: "34", HelmetSize: "L"},
		{Name: "ARUMUGAM NAGARATH", Department: "Quality", ShoeSize: "8", ShirtSize: "M", PantSize: "30", HelmetSize: "M"},
		{Name: "DURAIBHARATHI LOGESHWARAN", Department: "PROCESS", ShoeSize: "10", ShirtSize: "2XL", PantSize: "34", HelmetSize: "M"},
		{Name: "BORA HARI PRASAD", Department: "Safety", ShoeSize: "8", ShirtSize: "M", PantSize: "30", HelmetSize: "S"},
		{Name: "SINDHASHA ABULKASIMJUNAITHUL", Department: "Production", ShoeSize: "9", ShirtSize: "L", PantSize: "32", HelmetSize: "M"},
		{Name: "NEELAKANDAN SURESH", Department: "Maintenance", ShoeSize: "8", ShirtSize: "XL", PantSize: "34", HelmetSize: "L"},
		{Name: "KAZI SAJIB", Department: "Quality", ShoeSize: "9", ShirtSize: "M", PantSize: "30", HelmetSize: "M"},
		{Name: "BHUIYAN MD TAMIM", Department: "Production", ShoeSize: "8", ShirtSize: "L", PantSize: "32", HelmetSize: "M"},
		{Name: "BEPARI MD RAHMAN", Department: "Quality", ShoeSize: "9", ShirtSize: "M", PantSize: "30", HelmetSize: "M"},
		{Name: "KUPPUSAMY SEMBAN", Department: "Production", ShoeSize: "8", ShirtSize: "L", PantSize: "32", HelmetSize: "M"},
		{Name: "MURUGESEN NIVAS", Department: "Maintenance", ShoeSize: "9", ShirtSize: "XL", PantSize: "34", HelmetSize: "L"},
		{Name: "WIN ZAW OO", Department: "Safety", ShoeSize: "8", ShirtSize: "M", PantSize: "30", HelmetSize: "S"},
		{Name: "GUNASEKARAN PURUSHOTHAMAN", Department: "Production", ShoeSize: "9", ShirtSize: "L", PantSize: "32", HelmetSize: "M"},
		{Name: "BHUIYAN NADIM", Department: "Quality", ShoeSize: "8", ShirtSize: "M", PantSize: "30", HelmetSize: "M"},
		{Name: "KARUPPIAH KANAGARAJ", Department: "Production", ShoeSize: "9", ShirtSize: "L", PantSize: "32", HelmetSize: "M"},
		{Name: "DHIRAVIDA SELVAM SELVAGANAPATHI", Department: "Maintenance", ShoeSize: "8", ShirtSize: "XL", PantSize: "34", HelmetSize: "L"},
		{Name: "BALAKRISHNAN CHELLADURAI", Department: "Quality", ShoeSize: "9", ShirtSize: "M", PantSize: "30", HelmetSize: "M"},
		{Name: "RAMAMOORTHY VISHWA", Department: "Production", ShoeSize: "8", ShirtSize: "L", PantSize: "32", HelmetSize: "M"},
		{Name: "SEPENA JANARDHANA RAO", Department: "Safety", ShoeSize: "9", ShirtSize: "M", PantSize: "30", HelmetSize: "S"},
		{Name: "MOLLA MD ASIF", Department: "Production", ShoeSize: "8", ShirtSize: "L", PantSize: "32", HelmetSize: "M"},
		{Name: "MARUF MD", Department: "Maintenance", ShoeSize: "9", ShirtSize: "XL", PantSize: "34", HelmetSize: "L"},
		{Name: "KUMAR PRABHAKAR", Department: "Quality", ShoeSize: "8", ShirtSize: "M", PantSize: "30", HelmetSize: "M"},
		{Name: "PRANTO JUBAYER HOSSEN", Department: "Production", ShoeSize: "9", ShirtSize: "L", PantSize: "32", HelmetSize: "M"},
		{Name: "CHITRARASAN KALAIYARASAN", Department: "Quality", ShoeSize: "8", ShirtSize: "M", PantSize: "30", HelmetSize: "M"},
		{Name: "MRIDHA ROBIN", Department: "Production", ShoeSize: "9", ShirtSize: "L", PantSize: "32", HelmetSize: "M"},
		{Name: "HASAN ATIK", Department: "Maintenance", ShoeSize: "8", ShirtSize: "XL", PantSize: "34", HelmetSize: "L"},
		{Name: "SIDDIK MD ABU BAKKAR", Department: "Safety", ShoeSize: "9", ShirtSize: "M", PantSize: "30", HelmetSize: "S"},
		{Name: "RANGANATHAN IYAPPAN", Department: "Production", ShoeSize: "8", ShirtSize: "L", PantSize: "32", HelmetSize: "M"},
		{Name: "MIA MD SUJON", Department: "Quality", ShoeSize: "9", ShirtSize: "M", PantSize: "30", HelmetSize: "M"},
	}}
}
