// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the command line client of the secret API.
//
// Commands are built with cobra and talk to the server through
// [adapter.ServerAdapter].
package client
