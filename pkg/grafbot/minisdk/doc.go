// SPDX-License-Identifier: AGPL-3.0-only

// Package minisdk is a trimmed down version of the Grafana dashboard model.
// It carries only what chart resolution needs: dashboard identity, declared
// template variables and the panel tree, and it is tolerant of both the
// legacy rows-of-panels schema and the flat panel list that replaced it.
package minisdk
