// Package resolve turns a package identity into a resolved package and a
// target framework.
//
// [Resolver] applies the source mapping policy before handing the eligible
// sources to a [Finder], usually the NuGet feed client. [Selector] picks the
// framework in four tiers, first success wins:
//
//  1. the framework the caller asked for, with a warning when the package
//     declares none compatible with it
//  2. the newest framework supported by both the local SDK and the package
//  3. the newest framework the package declares
//  4. [framework.Default]
package resolve
