// SPDX-License-Identifier: AGPL-3.0-only

package commands

type EnvVarNames struct {
	Address     string
	APIKey      string
	TLSCAPath   string
	TLSCertPath string
	TLSKeyPath  string

	TimeRange     string
	Width         string
	Height        string
	TimeZone      string
	OrgID         string
	APIEndpoint   string
	MaxDashboards string
	RoomConfig    string

	S3Bucket           string
	S3Prefix           string
	S3Region           string
	SlackToken         string
	RocketChatURL      string
	RocketChatUser     string
	RocketChatPassword string
	TelegramToken      string
}

func NewEnvVarsWithPrefix(prefix string) EnvVarNames {
	const (
		address     = "ADDRESS"
		apiKey      = "API_KEY"
		tlsCAPath   = "TLS_CA_PATH"
		tlsCertPath = "TLS_CERT_PATH"
		tlsKeyPath  = "TLS_KEY_PATH"

		timeRange     = "QUERY_TIME_RANGE"
		width         = "DEFAULT_WIDTH"
		height        = "DEFAULT_HEIGHT"
		timeZone      = "DEFAULT_TIME_ZONE"
		orgID         = "ORG_ID"
		apiEndpoint   = "API_ENDPOINT"
		maxDashboards = "MAX_RETURNED_DASHBOARDS"
		roomConfig    = "ROOM_CONFIG"

		s3Bucket           = "S3_BUCKET"
		s3Prefix           = "S3_PREFIX"
		s3Region           = "S3_REGION"
		slackToken         = "SLACK_TOKEN"
		rocketChatURL      = "ROCKETCHAT_URL"
		rocketChatUser     = "ROCKETCHAT_USER"
		rocketChatPassword = "ROCKETCHAT_PASSWORD"
		telegramToken      = "TELEGRAM_TOKEN"
	)

	if len(prefix) > 0 && prefix[len(prefix)-1] != '_' {
		prefix = prefix + "_"
	}

	return EnvVarNames{
		Address:     prefix + address,
		APIKey:      prefix + apiKey,
		TLSCAPath:   prefix + tlsCAPath,
		TLSCertPath: prefix + tlsCertPath,
		TLSKeyPath:  prefix + tlsKeyPath,

		TimeRange:     prefix + timeRange,
		Width:         prefix + width,
		Height:        prefix + height,
		TimeZone:      prefix + timeZone,
		OrgID:         prefix + orgID,
		APIEndpoint:   prefix + apiEndpoint,
		MaxDashboards: prefix + maxDashboards,
		RoomConfig:    prefix + roomConfig,

		S3Bucket:           prefix + s3Bucket,
		S3Prefix:           prefix + s3Prefix,
		S3Region:           prefix + s3Region,
		SlackToken:         prefix + slackToken,
		RocketChatURL:      prefix + rocketChatURL,
		RocketChatUser:     prefix + rocketChatUser,
		RocketChatPassword: prefix + rocketChatPassword,
		TelegramToken:      prefix + telegramToken,
	}
}
