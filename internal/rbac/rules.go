package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"course:view",
		"lesson:open",
		"lesson:complete",
		"quiz:view",
		"quiz:submit",
		"capstone:view",
		"capstone:submit",
		"progress:view-own",
		"grade:view-own",
	},
	"teacher": {
		"course:create",
		"course:view",
		"course:edit",
		"course:enroll",
		"quiz:view",
		"quiz:edit",
		"capstone:view",
		"capstone:edit",
		"capstone:grade",
		"attempt:view-all",
		"progress:view-all",
		"grade:view-all",
	},
	"admin": {
		"*", // everything
	},
}
