/*
Package status formats scan results for people.

	            +-------------+
	            |  Formatter  |
	            +------+------+
	                   |
	      +------------+------------+
	      |                         |
	+-----+-----+             +-----+-----+
	|   Tree    |             |  Explain  |
	|   lines   |             |  report   |
	+-----------+             +-----------+

🎯 Purpose:
- Renders tree nodes with their decision and the mode in effect
- Renders an explain result as a short report
- Formats progress and errors the same way everywhere

🔍 Example:

	f := status.NewDefaultFormatter()
	fmt.Println(f.FormatNode(node))
	fmt.Println(status.FormatTreeLine(node, depth))
	for _, line := range status.FormatExplain(res) {
		fmt.Println(line)
	}
*/
package status
