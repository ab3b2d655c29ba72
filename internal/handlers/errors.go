package handlers

// Error Codes
const (
	ErrCodeInvalidJSON         = "invalid_json"
	ErrCodeValidationFailed    = "validation_failed"
	ErrCodeInvalidHours        = "invalid_hours"
	ErrCodeInvalidTime         = "invalid_time"
	ErrCodeShopNotFound        = "shop_not_found"
	ErrCodeAliasTaken          = "alias_taken"
	ErrCodeFailedLoadShops     = "failed_load_shops"
	ErrCodeFailedSaveShop      = "failed_save_shop"
	ErrCodeFailedDeleteShop    = "failed_delete_shop"
	ErrCodeFailedLoadHours     = "failed_load_hours"
	ErrCodeFailedSaveHours     = "failed_save_hours"
	ErrCodeFailedLoadSettings  = "failed_load_settings"
	ErrCodeFailedSaveSettings  = "failed_save_settings"
	ErrCodeFailedApplySettings = "failed_apply_settings"
	ErrCodeUnauthorized        = "unauthorized"
	ErrCodeUnknown             = "unknown_error"
)

// ErrorMessages maps error codes to user-friendly messages
var ErrorMessages = map[string]string{
	ErrCodeInvalidJSON:         "Request body is not valid JSON.",
	ErrCodeValidationFailed:    "Request failed validation.",
	ErrCodeInvalidHours:        "Business hours are invalid.",
	ErrCodeInvalidTime:         "The at parameter must be an RFC 3339 timestamp.",
	ErrCodeShopNotFound:        "Shop not found.",
	ErrCodeAliasTaken:          "Another shop already uses this alias.",
	ErrCodeFailedLoadShops:     "Failed to load shops.",
	ErrCodeFailedSaveShop:      "Failed to save shop.",
	ErrCodeFailedDeleteShop:    "Failed to delete shop.",
	ErrCodeFailedLoadHours:     "Failed to load business hours.",
	ErrCodeFailedSaveHours:     "Failed to save business hours.",
	ErrCodeFailedLoadSettings:  "Failed to load settings.",
	ErrCodeFailedSaveSettings:  "Failed to save settings.",
	ErrCodeFailedApplySettings: "Settings were saved but could not be applied.",
	ErrCodeUnauthorized:        "A valid admin token is required for this action.",
	ErrCodeUnknown:             "An unknown error occurred.",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code string) string {
	if msg, ok := ErrorMessages[code]; ok {
		return msg
	}
	return ErrorMessages[ErrCodeUnknown]
}
