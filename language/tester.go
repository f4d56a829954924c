package language

// ParseTester parses one directive of the tester language. Testers get the
// read-run-patch subset of the coder language plus FINISH; CHANGE and
// REPLACE operate on the tester's scratch pad.
func ParseTester(chunk string) (Directive, error) {
	toks, lerr := lex(chunk)
	if lerr != nil {
		return nil, lerr
	}
	p := &parser{toks: toks}

	kw, perr := p.keyword()
	if perr != nil {
		return nil, perr
	}

	var d Directive
	switch kw {
	case "READ":
		var name string
		name, perr = p.expectString("filename")
		d = Read{Target: name}
	case "RUN":
		var cmd string
		cmd, perr = p.expectString("command")
		d = Run{Command: cmd}
	case "CHANGE":
		var content string
		content, perr = p.expectField("CONTENT")
		d = Change{Content: content}
	case "REPLACE":
		d, perr = parseReplace(p)
	case "FINISH":
		var prompt string
		prompt, perr = p.expectField("PROMPT")
		d = Finish{Prompt: prompt}
	default:
		return nil, parseErrorf("Unknown directive: %s", kw)
	}

	if perr != nil {
		return nil, perr
	}
	if perr = p.finish(kw); perr != nil {
		return nil, perr
	}
	return d, nil
}
