// SPDX-License-Identifier: AGPL-3.0-only

package commands

import (
	"github.com/alecthomas/kingpin/v2"

	"github.com/grafana/grafbot/pkg/grafbot/client"
)

// registerClientFlags adds the Grafana endpoint flags shared by every command
// that talks to the API. Address validity is checked by client.New so the
// render command can also source it from a room config.
func registerClientFlags(cmd *kingpin.CmdClause, envVars EnvVarNames, cfg *client.Config) {
	cmd.Flag("address", "Address of the Grafana instance, e.g. \"https://play.grafana.org\".").
		Default("").Envar(envVars.Address).StringVar(&cfg.Address)
	cmd.Flag("api-key", "API key for the Grafana instance. Leave unset for unauthenticated access.").
		Default("").Envar(envVars.APIKey).StringVar(&cfg.APIKey)
	cmd.Flag("tls-ca-path", "TLS CA certificate to verify the Grafana API with.").
		Default("").Envar(envVars.TLSCAPath).StringVar(&cfg.TLS.CAPath)
	cmd.Flag("tls-cert-path", "TLS client certificate to authenticate with when contacting Grafana.").
		Default("").Envar(envVars.TLSCertPath).StringVar(&cfg.TLS.CertPath)
	cmd.Flag("tls-key-path", "TLS client certificate private key to authenticate with when contacting Grafana.").
		Default("").Envar(envVars.TLSKeyPath).StringVar(&cfg.TLS.KeyPath)
}
