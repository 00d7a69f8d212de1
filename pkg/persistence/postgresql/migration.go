package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create conversations table
			CREATE TABLE conversations (
				id VARCHAR(255) PRIMARY KEY,
				turns JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_conversations_updated_at ON conversations(updated_at);
		`,
	}
}
