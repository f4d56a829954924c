package language

// ParseMaster parses one directive of the master language. The master
// language is the manager language operating at the project root; the
// grammar is identical and only interpretation differs.
func ParseMaster(chunk string) (Directive, error) {
	return ParseManager(chunk)
}
