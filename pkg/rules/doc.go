/*
Package rules decides what a copy includes, given .copyignore and .copyinclude files.

	+-------------+      +-------------+      +-------------+
	|   Parser    | ---> |   Context   | ---> |  Evaluate   |
	| (rule text) |      |  (stacking) |      | (per node)  |
	+-------------+      +------+------+      +------+------+
	                            |                    |
	                     +------+------+      +------+------+
	                     |  Conflicts  |      |   Matcher   |
	                     +-------------+      +-------------+

🎯 Rule files:
  - .copyignore puts a directory in blacklist mode: matched entries are left out
  - .copyinclude puts a directory in whitelist mode: only matched entries are copied
  - a directory holding both is a conflict and blocks planning

🔄 Context transitions when entering a child directory:
  - no rule file: inherit the parent context
  - same mode as the parent: stack, parent patterns first
  - different mode, or parent in none: reset to the child's patterns

🔍 Patterns:
  - "name/" matches directories called name below the rule file, and every file inside them
  - "*.log" matches base names, "*" and "?" never cross a separator
  - anything else is a path relative to the rule file's directory; without wildcards it also
    covers everything beneath that path
  - a relative path with wildcards ("src/*.ts") is glob-matched against the whole relative
    path, where plain gitignore-style tools would only compare it literally

All comparisons fold case and treat "/" and "\" alike.

🔍 Example:

	ctx := rules.RootContext()
	ctx = rules.DeriveChildContext(ctx, rules.FindRuleFiles(c, dir))
	state, res := rules.Evaluate(path, false, ctx, rules.NewConflictSet(conflicts))
*/
package rules
