package dto

// Settings 用户可修改的运行时设置。
type Settings struct {
	Timezone string `json:"timezone"`
}

// TimezoneOption 可选时区。
type TimezoneOption struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// TimezoneListResponse is the response for listing available zones.
type TimezoneListResponse struct {
	Timezones []TimezoneOption `json:"timezones"`
}
