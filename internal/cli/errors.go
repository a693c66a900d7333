// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/aptui/internal/archipelago"
	"github.com/jeranaias/aptui/internal/config"
)

// =============================================================================
// EXIT CODES - Specific codes for different error categories
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates the server refused the slot or password
	ExitAuthError = 4
	// ExitNetworkError indicates network or connectivity error
	ExitNetworkError = 5
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// CommandError carries an explicit exit code.
type CommandError struct {
	Code int
	Err  error
}

func (e *CommandError) Error() string {
	return e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code
	}

	var verrs config.ValidateErrors
	if errors.As(err, &verrs) {
		return ExitConfigError
	}

	var clientErr *archipelago.ClientError
	if errors.As(err, &clientErr) {
		switch clientErr.Type {
		case archipelago.ErrTypeTimeout:
			return ExitTimeoutError
		case archipelago.ErrTypeRefused:
			return ExitAuthError
		case archipelago.ErrTypeConnection, archipelago.ErrTypeNotConnected, archipelago.ErrTypeInvalidResponse:
			return ExitNetworkError
		}
	}
	return ExitGeneralError
}

// DisplayError prints err to w in the shared error style.
func DisplayError(w io.Writer, err error) {
	fmt.Fprintln(w, ErrorStyle.Render("Error:")+" "+err.Error())
}
