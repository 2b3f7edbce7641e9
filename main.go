// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/hersafety/locreport/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
