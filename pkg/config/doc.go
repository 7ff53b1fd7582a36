/*
Package config loads smartcopy settings.

	            +-------------+
	            |  Settings   |
	            +------+------+
	                   |
	     +-------------+-------------+
	     |             |             |
	+----+----+   +----+----+   +----+----+
	|  YAML   |   |  JSON   |   |   HCL   |
	| Parser  |   | Parser  |   | Parser  |
	+---------+   +---------+   +---------+

🎯 Purpose:
- Reads scanner and copy tool settings from a file
- Fills anything the file leaves out with defaults
- Normalizes thread counts and the tool name

🔄 Flow:
1. Resolve picks the explicit file or the first .smartcopy.* file found
2. The parser registered for the extension decodes on top of Default()
3. Validate clamps counts and rejects unknown tools

🤝 Interfaces:
- Parser: format-specific decoding, registered from init

📝 HCL files can reference env.NAME and num_cpu:

	scanner_threads = num_cpu * 2
	tool_path       = env.RSYNC_PATH
*/
package config
