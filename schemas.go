package emotiai

import "encoding/json"

func chatSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "conversationId": {
      "type": "string",
      "description": "Identifier of the conversation this message belongs to"
    },
    "message": {
      "type": "string",
      "description": "The user's message for this turn"
    },
    "sessionType": {
      "type": "string",
      "description": "Session mode, e.g. Free Chat, Guided Reflection, Meditation, Cognitive Support, Journaling"
    }
  },
  "required": ["conversationId", "message"]
}`)
}

func takeawaysSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "conversationId": {
      "type": "string",
      "description": "Identifier of the conversation to summarize"
    },
    "sessionType": {
      "type": "string",
      "description": "Session mode the conversation was held in"
    }
  },
  "required": ["conversationId"]
}`)
}

func searchGuidesSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "query": {
      "type": "string",
      "description": "Natural-language query to match against the guidance corpus"
    },
    "topK": {
      "type": "integer",
      "description": "Maximum number of guides to return",
      "minimum": 1
    }
  },
  "required": ["query"]
}`)
}

func listGuidesSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {}
}`)
}

func addGuideSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "title": {
      "type": "string",
      "description": "Guide title"
    },
    "content": {
      "type": "string",
      "description": "Guide body text"
    }
  },
  "required": ["content"]
}`)
}

func ingestCorpusSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "force": {
      "type": "boolean",
      "description": "Re-embed every guide instead of only those missing an embedding"
    }
  }
}`)
}
