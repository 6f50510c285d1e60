package tool

import (
	"github.com/cloudwego/eino/schema"
)

const (
	ToolValidateEmail      = "validate_email"
	ToolValidatePhone      = "validate_phone"
	ToolValidateMoveInDate = "validate_move_in_date"
	ToolValidateBeds       = "validate_beds"
	ToolStoreProspectInfo  = "store_prospect_info"
	ToolCheckAvailability  = "check_availability"
	ToolBookTour           = "book_tour"
)

// Infos describes the leasing tool surface exposed to the chat model.
func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: ToolValidateEmail,
			Desc: "Validate an email address. Returns valid=true if the address is well formed.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"email": {Type: schema.String, Desc: "Email address to validate", Required: true},
			}),
		},
		{
			Name: ToolValidatePhone,
			Desc: "Validate a phone number. Returns valid=true if the number is well formed.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"phone": {Type: schema.String, Desc: "Phone number to validate", Required: true},
			}),
		},
		{
			Name: ToolValidateMoveInDate,
			Desc: "Validate a desired move-in date. Returns valid=true if the date parses and is not in the past.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"date": {Type: schema.String, Desc: "Move-in date as the user wrote it", Required: true},
			}),
		},
		{
			Name: ToolValidateBeds,
			Desc: "Validate the requested number of bedrooms. Returns valid=true for a whole number greater than zero.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"beds": {Type: schema.String, Desc: "Number of bedrooms as the user wrote it", Required: true},
			}),
		},
		{
			Name: ToolStoreProspectInfo,
			Desc: "Store the prospect's contact details. Returns the prospect id. Only call after every field has been validated.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"name":  {Type: schema.String, Desc: "Prospect's full name", Required: true},
				"email": {Type: schema.String, Desc: "Prospect's email address", Required: true},
				"phone": {Type: schema.String, Desc: "Prospect's phone number", Required: true},
			}),
		},
		{
			Name: ToolCheckAvailability,
			Desc: "Check inventory for available properties with the requested number of bedrooms. Returns a property id when one is available.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"beds": {Type: schema.Integer, Desc: "Number of bedrooms", Required: true},
			}),
		},
		{
			Name: ToolBookTour,
			Desc: "Book a tour of the given unit for the prospect and send a confirmation email.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"unit":       {Type: schema.Integer, Desc: "Property id returned by check_availability", Required: true},
				"user_name":  {Type: schema.String, Desc: "Name of the prospect", Required: true},
				"user_email": {Type: schema.String, Desc: "Email of the prospect", Required: true},
				"user_id":    {Type: schema.Integer, Desc: "Prospect id returned by store_prospect_info", Required: true},
			}),
		},
	}
}
