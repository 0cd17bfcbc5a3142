// SPDX-License-Identifier: MPL-2.0

// Package testutil holds file and manifest fixtures shared by the package tests.
package testutil
