// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runbatch runs a caller-supplied operation once per site of a
// multi-site deployment, switching the ambient active site before each
// invocation and restoring it afterwards on every exit path.
//
// One site's failure never stops the batch; the outcome for every input site
// is recorded in order. A failure of the restoration machinery itself aborts
// the whole batch with a *FatalError, because a leaked site context would
// corrupt every execution that follows.
package runbatch
