package language

// ParseCoder parses one directive of the coder language.
//
// Directives:
//
//	READ "filename"
//	RUN "command"
//	CHANGE CONTENT="""..."""
//	REPLACE FROM="..." TO="..." [, FROM="..." TO="..."]...
//	INSERT FROM="..." TO="..."
//	SPAWN tester PROMPT="..."
//	WAIT
//	FINISH PROMPT="..."
func ParseCoder(chunk string) (Directive, error) {
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
	case "INSERT":
		var from, to string
		if from, perr = p.expectField("FROM"); perr == nil {
			to, perr = p.expectField("TO")
		}
		d = Insert{From: from, To: to}
	case "SPAWN":
		d, perr = parseSpawn(p)
	case "WAIT":
		d = Wait{}
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

func parseReplace(p *parser) (Directive, *ParseError) {
	var items []ReplaceItem
	for {
		from, err := p.expectField("FROM")
		if err != nil {
			return nil, err
		}
		to, err := p.expectField("TO")
		if err != nil {
			return nil, err
		}
		items = append(items, ReplaceItem{From: from, To: to})
		if !p.expectComma() {
			break
		}
	}
	return Replace{Items: items}, nil
}
