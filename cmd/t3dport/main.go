// t3dport imports legacy T3D text exports into an asset store.
//
// It reads a level export or a tree of per-asset exports, constructs
// materials, material instances, meshes and actors in the configured store
// and reports every reference it could not resolve.
//
// Usage:
//
//	# Import a level
//	t3dport import --mode scene --source exports/Level01 --dest Imported/Level01
//
//	# Import every material under a folder, printing a JSON report
//	t3dport import --mode material --source exports/Materials --dest Game/Materials --format json
//
//	# Check exports without writing anything
//	t3dport lint --source exports/Level01
//
//	# Re-import whenever an export changes
//	t3dport watch --source exports/Level01 --dest Imported/Level01
//
//	# Re-import from a Git repository every 15 minutes
//	t3dport schedule --git-url https://example.com/art/exports.git --cron "*/15 * * * *"
package main

func main() {
	Execute()
}
