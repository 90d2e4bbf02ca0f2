// Package dotnet drives the dotnet CLI: restore, SDK discovery and the
// frameworks an SDK can target.
//
// Every process goes through a [Runner]. [ExecRunner] spawns real processes,
// decoding the JSON objects MSBuild prints on stdout while the child runs;
// tests substitute a fake. Cancelling the context interrupts the child and
// kills it when it does not exit within [DefaultWaitDelay].
//
// [CLI.Restore] runs
//
//	dotnet restore [SOURCE] --getProperty:ProjectAssetsFile ...
//
// and retries once when the build reports an empty ProjectAssetsFile, which
// happens on projects that were never restored before.
package dotnet
